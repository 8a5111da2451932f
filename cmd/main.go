package main

import (
	"flag"
	"strconv"
	"time"

	apihttp "papertrade/internal/api/http"
	"papertrade/internal/controllers"
	mongorepo "papertrade/internal/repository/mongo"
	"papertrade/internal/repository/postgres"
	"papertrade/internal/usecases"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	storeTimeout  = 5 * time.Second
	quoteInterval = 10 * time.Second
)

func main() {
	var app App
	var confFileName string

	flag.StringVar(&confFileName, "config", ".env", "")
	flag.Parse()

	app.Name = "papertrade"

	if err := app.loadConfig(confFileName); err != nil {
		panic(err)
	}

	app.initLogger()

	if app.Config.LokiAddress != "" {
		if err := app.initLoki(); err != nil {
			panic(err)
		}
	}

	if err := app.InitDB(); err != nil {
		panic(err)
	}

	if err := app.initMongo(); err != nil {
		panic(err)
	}

	app.initHTTPClient()

	var sink usecases.HostSink = controllers.NewLogNotifier(app.Logger)
	if app.Config.TelegramApiToken != "" {
		if err := app.initTgBot(); err != nil {
			panic(err)
		}

		chatId, err := strconv.ParseInt(app.Config.TelegramChatID, 10, 64)
		if err != nil {
			panic(err)
		}

		sink = controllers.NewTgmNotifier(controllers.NewTgmController(app.TGM, chatId), app.Logger)
	}

	accountRepo := postgres.NewAccountRepository(app.DB)
	orderRepo := postgres.NewOrderRepository(app.DB)
	positionRepo := postgres.NewPositionRepository(app.DB)
	executionRepo := postgres.NewExecutionRepository(app.DB)
	historyRepo := postgres.NewHistoryRepository(app.DB)
	ledgerRepo := postgres.NewLedgerRepository(app.DB)
	equityRepo := mongorepo.NewEquityRepository(app.Mongo)

	quoteController := controllers.NewQuoteController(
		app.HTTPClient,
		app.Config.QuotesURL,
		app.Logger,
	)

	metrics := usecases.NewMetrics(prometheus.DefaultRegisterer)

	equityUseCase := usecases.NewEquityUseCase(
		accountRepo,
		equityRepo,
		sink,
		app.Logger,
	)

	executionUseCase := usecases.NewExecutionUseCase(
		orderRepo,
		positionRepo,
		ledgerRepo,
		equityUseCase,
		sink,
		metrics,
		app.Logger,
		storeTimeout,
	)

	orderUseCase := usecases.NewOrderUseCase(
		orderRepo,
		positionRepo,
		executionRepo,
		historyRepo,
		quoteController,
		executionUseCase,
		sink,
		metrics,
		app.Logger,
		storeTimeout,
	)

	quoteUseCase := usecases.NewQuoteUseCase(
		quoteController,
		orderRepo,
		positionRepo,
		executionUseCase,
		sink,
		app.Logger,
		quoteInterval,
		storeTimeout,
	)

	if err := quoteUseCase.StartRestingScan(); err != nil {
		panic(err)
	}
	defer quoteUseCase.StopRestingScan()

	sink.ConnectionOpened()
	defer sink.ConnectionClosed()

	f := fiber.New()

	middleware := apihttp.NewMiddleware(f)
	middleware.UseMetrics()

	apihttp.RegisterHTTPEndpoints(f, orderUseCase, quoteUseCase, equityUseCase, app.Logger)

	if err := f.Listen(app.Config.HTTPAddr); err != nil {
		sink.ConnectionError(err)
		app.Logger.Error(err)
	}
}
