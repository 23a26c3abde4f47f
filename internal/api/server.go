package api

import (
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/rafflehq/raffle-api/docs"
	v1 "github.com/rafflehq/raffle-api/internal/api/handler/v1"
	"github.com/rafflehq/raffle-api/internal/api/middleware"
	"github.com/rafflehq/raffle-api/internal/config"
	"github.com/rafflehq/raffle-api/internal/payment"
	"github.com/rafflehq/raffle-api/internal/repository"
	"github.com/rafflehq/raffle-api/internal/repository/dao"
	"github.com/rafflehq/raffle-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	Finalizer *service.FinalizerService
	Winners   *service.WinnerService
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	ledger := repository.NewTicketLedger(dao.NewTicketDAO(db))
	competitionRepo := repository.NewCompetitionRepository(dao.NewCompetitionDAO(db))
	entryRepo := repository.NewEntryRepository(dao.NewEntryDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	winnerRepo := repository.NewWinnerRepository(dao.NewWinnerDAO(db))

	var payments service.PaymentProvider
	if conf.Stripe != nil && conf.Stripe.Key != "" {
		payments = payment.NewStripeProvider(conf.Stripe)
	}

	allocationSvc := service.NewAllocationService(ledger, competitionRepo, entryRepo, userRepo, payments, service.AllocationConfig{
		ReservationTTL: conf.Allocation.ReservationTTL,
		MaxAttempts:    conf.Allocation.MaxAttempts,
	})
	s.Finalizer = service.NewFinalizerService(ledger, entryRepo)
	var claimWindow time.Duration
	if conf.Winners != nil {
		claimWindow = conf.Winners.ClaimWindow
	}
	s.Winners = service.NewWinnerService(winnerRepo, entryRepo, competitionRepo, claimWindow)

	competitionHandler := v1.NewCompetitionHandler(service.NewCompetitionService(competitionRepo, ledger))
	allocationHandler := v1.NewAllocationHandler(allocationSvc, s.Finalizer)
	winnerHandler := v1.NewWinnerHandler(s.Winners)
	userHandler := v1.NewUserHandler(service.NewUserService(userRepo))

	s.MountHandlers(competitionHandler, allocationHandler, winnerHandler, userHandler)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	competitionHandler *v1.CompetitionHandler,
	allocationHandler *v1.AllocationHandler,
	winnerHandler *v1.WinnerHandler,
	userHandler *v1.UserHandler,
) {
	const basePath = "/api/v1"

	users := s.Router.Group(basePath)
	{
		users.POST("/users", userHandler.HandleCreateUser)
		users.GET("/users", userHandler.HandleGetUserByEmail)
		users.GET("/users/:userID", userHandler.HandleGetUser)
		users.GET("/users/:userID/entries", allocationHandler.HandleGetUserEntries)
	}

	competitions := s.Router.Group(basePath)
	{
		competitions.POST("/competitions", competitionHandler.HandleCreateCompetition)
		competitions.GET("/competitions", competitionHandler.HandleGetCompetitions)
		competitions.GET("/competitions/:competitionID", competitionHandler.HandleGetCompetition)
		competitions.POST("/competitions/:competitionID/close", competitionHandler.HandleCloseCompetition)
		competitions.GET("/competitions/:competitionID/tickets", competitionHandler.HandleGetTicketStatus)
		competitions.POST("/competitions/:competitionID/allocate", allocationHandler.HandleAllocateTickets)
		competitions.POST("/competitions/:competitionID/draw", winnerHandler.HandleDrawWinner)
		competitions.GET("/competitions/:competitionID/winners", winnerHandler.HandleGetWinners)
	}

	entries := s.Router.Group(basePath)
	{
		entries.GET("/entries/:entryID", allocationHandler.HandleGetEntry)
		entries.POST("/entries/:entryID/confirm", allocationHandler.HandleConfirmPayment)
		entries.POST("/entries/:entryID/fail", allocationHandler.HandleFailPayment)

		entries.POST("/winners/:winnerID/claim", winnerHandler.HandleClaimWinner)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Raffle API"
	docs.SwaggerInfo.Description = "Competition ticket sales with atomic number allocation."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
