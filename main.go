package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"crm-api/api"
	"crm-api/integrations/calendar"
	"crm-api/integrations/contactsync"
	"crm-api/repo"
	"crm-api/storage"
)

func main() {
	logger := log.New()
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
		logger.SetLevel(log.DebugLevel)
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		log.Fatal("missing DATA_DIR")
	}
	kv, err := storage.OpenBadger(dataDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer kv.Close()

	var store storage.CollectionStore = storage.New(kv, logger)

	if redisConn := os.Getenv("REDIS_CONNECTION_STRING"); redisConn != "" {
		redisOpts, err := redis.ParseURL(redisConn)
		if err != nil {
			parts := strings.Split(redisConn, ",")
			redisOpts = &redis.Options{Addr: parts[0]}
			for _, p := range parts[1:] {
				kv := strings.SplitN(p, "=", 2)
				if len(kv) != 2 {
					continue
				}
				switch strings.ToLower(kv[0]) {
				case "password":
					redisOpts.Password = kv[1]
				case "ssl":
					if strings.ToLower(kv[1]) == "true" {
						redisOpts.TLSConfig = &tls.Config{}
					}
				}
			}
		}
		ttl := 5 * time.Minute
		if v := os.Getenv("CACHE_TTL"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				log.Fatalf("invalid CACHE_TTL: %v", err)
			}
			ttl = d
		}
		store = storage.NewCache(store, redis.NewClient(redisOpts), ttl)
	}

	testMode := os.Getenv("AUTH_TEST_MODE") == "1"
	var auth *api.Auth
	if testMode {
		auth = api.NewAuth(nil, "", "")
	} else {
		jwtAudience := os.Getenv("AUTH0_AUDIENCE")
		domain := os.Getenv("AUTH0_DOMAIN")
		if jwtAudience == "" || domain == "" {
			log.Fatal("missing Auth0 config")
		}
		jwksURL := fmt.Sprintf("https://%s/.well-known/jwks.json", domain)
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewAuth(jwks, jwtAudience, "https://"+domain+"/")
	}

	var source api.ContactSource
	if apiKey := os.Getenv("CONTACT_SYNC_API_KEY"); apiKey != "" {
		baseURL := os.Getenv("CONTACT_SYNC_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.followupboss.com"
		}
		client, err := contactsync.New(baseURL, apiKey)
		if err != nil {
			log.Fatalf("contact sync: %v", err)
		}
		source = client
	}

	repos := api.Repos{
		Contacts:      repo.Contacts(store, logger),
		Tasks:         repo.Tasks(store, logger),
		TaskTemplates: repo.TaskTemplates(store, logger),
		Transactions:  repo.Transactions(store, logger),
		Notes:         repo.Notes(store, logger),
		Pipeline:      repo.Pipeline(store, logger),
		Activities:    repo.Activities(store, logger),
	}
	cal := calendar.New(store, logger)

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(api.GzipRequestMiddleware())

	api.Register(e, repos, cal, source, auth, logger)

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}
