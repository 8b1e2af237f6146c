package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/ye11ow-banana/main-be/config"
	"github.com/ye11ow-banana/main-be/controllers"
	"github.com/ye11ow-banana/main-be/logger"
	"github.com/ye11ow-banana/main-be/repositories"
	"github.com/ye11ow-banana/main-be/routes"
	"github.com/ye11ow-banana/main-be/services"
	"github.com/ye11ow-banana/main-be/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "main-be",
		Short: "Calorie tracking backend",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create extensions, tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := config.InitDB(cfg.DB)
			if err != nil {
				return err
			}
			return config.Migrate(db)
		},
	}
}

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.LogMode)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) error {
	db, err := config.InitDB(cfg.DB)
	if err != nil {
		return err
	}
	if migrate {
		if err := config.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	awsCfg, err := utils.LoadAWSConfig(ctx, cfg.AWS.Region)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)
	days := repositories.NewDayRepository(db)
	devices := repositories.NewDeviceRepository(db)

	oracle, err := services.NewOpenAIService(log, cfg.OpenAI, cfg.Identities)
	if err != nil {
		return err
	}
	matcher := services.NewProductMatcher(products, cfg.Matcher)
	resolver := services.NewUnknownProductResolver(log, oracle, products, cfg.OpenAI.TextModel)
	ingestion := services.NewIngestionService(log, oracle, matcher, resolver,
		cfg.OpenAI.VisionModel, cfg.OpenAI.TextModel, cfg.IngestTimeout)

	hub := services.NewRealtimeHub()
	var (
		bus        *services.DayEventBus
		deviceCtrl *controllers.DeviceController
	)
	if cfg.AWS.SNSPlatformARN != "" {
		push := services.NewPushService(log, sns.NewFromConfig(awsCfg), devices, cfg.AWS.SNSPlatformARN)
		bus = services.NewDayEventBus(log, hub, push)
		deviceCtrl = controllers.NewDeviceController(log, push)
	} else {
		log.Info("SNS_PLATFORM_ARN not set, push notifications disabled")
		bus = services.NewDayEventBus(log, hub, nil)
	}

	tokens := utils.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	mailer := utils.NewSESMailer(awsCfg, cfg.AWS.SESSender)
	codeTTL := cfg.JWT.VerificationCodeTTL
	authSvc := services.NewAuthService(users, tokens)
	userSvc := services.NewUserService(log, users,
		services.NewEmailNotificationService(mailer, int(codeTTL/time.Minute)), codeTTL)
	avatarSvc := services.NewAvatarService(
		utils.NewS3Storage(awsCfg, cfg.AWS.AvatarBucket, cfg.AWS.PublicBaseURL), users)

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := routes.SetupRouter(routes.RouterDeps{
		Log:         log,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Auth:        authSvc,
		AuthCtrl:    controllers.NewAuthController(log, authSvc, userSvc, avatarSvc),
		CalorieCtrl: controllers.NewCalorieController(log, ingestion,
			services.NewDayCreationService(log, days, products, bus),
			services.NewDayService(days),
			services.NewTrendService(days)),
		ProductCtrl:  controllers.NewProductController(log, services.NewProductService(products)),
		DeviceCtrl:   deviceCtrl,
		RealtimeCtrl: controllers.NewRealtimeController(log, hub, cfg.HTTP.CORSOrigins),
	})

	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.HTTP.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
