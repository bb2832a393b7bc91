package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/splitlease/message-curation/internal/config"
	"github.com/splitlease/message-curation/internal/database"
	"github.com/splitlease/message-curation/internal/handler"
	"github.com/splitlease/message-curation/internal/notify"
	"github.com/splitlease/message-curation/internal/queue"
	"github.com/splitlease/message-curation/internal/repository"
	"github.com/splitlease/message-curation/internal/router"
	"github.com/splitlease/message-curation/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()
	cacheCfg := config.LoadCacheConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is absent; caching just turns off

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	messages := repository.NewMessageRepo(db)
	threads := repository.NewThreadRepo(db)
	proposals := repository.NewProposalRepo(db)
	templates := repository.NewTemplateRepo(db)
	audits := repository.NewAuditRepo(db)

	recorder := queue.NewRecorder(audits)
	if os.Getenv("AUDIT_QUEUE_DISABLED") == "true" {
		recorder.Disabled = true
	} else {
		go func() {
			if err := queue.StartAuditConsumer(audits); err != nil {
				log.Printf("audit consumer stopped: %v", err)
			}
		}()
	}

	mod := &service.Moderation{
		Messages:      messages,
		Threads:       threads,
		Users:         users,
		Proposals:     proposals,
		Templates:     templates,
		Email:         notify.NewSMTPSender(cfg.EmailFrom, cfg.EmailProvider, cfg.EmailAPIKey),
		SMS:           notify.NewTwilioSender(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom),
		Audit:         recorder,
		SupportEmail:  cfg.SupportEmail,
		NotifyTimeout: cfg.NotifyTimeout,
	}

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(mod, cacheCfg, rdb), cfg.JWTSecret, cacheCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
