// The kumande service: a rest backend for a food ordering marketplace.
package main

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/relabs-tech/kumande/core/access"
	"github.com/relabs-tech/kumande/core/backend"
	"github.com/relabs-tech/kumande/core/csql"
	"github.com/relabs-tech/kumande/core/events"
	"github.com/relabs-tech/kumande/core/logger"
)

// Service is the configuration of the kumande service, decoded from the
// environment at startup. Missing mandatory settings abort the start.
type Service struct {
	Postgres     string `env:"POSTGRES,required" description:"the connection string for the postgres database"`
	JwtSecret    string `env:"JWT_SECRET,required" description:"the secret bearer tokens are signed with"`
	JwtAlgorithm string `env:"JWT_ALGORITHM,default=HS256" description:"the HMAC signing algorithm, one of HS256, HS384, HS512"`
	Port         string `env:"PORT,default=3000" description:"the port the service listens on"`
	KafkaBrokers string `env:"KAFKA_BROKERS" description:"comma-separated kafka brokers for change notifications, optional"`
	LogLevel     string `env:"LOG_LEVEL,default=info" description:"the log level"`
}

func main() {
	service := Service{}
	if err := envdecode.Decode(&service); err != nil {
		panic(err)
	}

	logLevel, err := logrus.ParseLevel(service.LogLevel)
	if err != nil {
		panic(err)
	}
	logger.InitLogger(logLevel)
	rlog := logger.Default()

	verifier, err := access.NewVerifier(service.JwtSecret, service.JwtAlgorithm)
	if err != nil {
		panic(err)
	}

	db := csql.Open(service.Postgres)
	defer db.Close()

	builder := &backend.Builder{
		DB:       db,
		Router:   mux.NewRouter(),
		Verifier: verifier,
	}
	if len(service.KafkaBrokers) > 0 {
		notifier := events.NewKafkaNotifier(strings.Split(service.KafkaBrokers, ","))
		defer notifier.Close()
		builder.Notifier = notifier
		rlog.Infoln("publishing change notifications to", service.KafkaBrokers)
	}
	backend.New(builder)

	rlog.Infoln("listen on port", service.Port)
	rlog.Fatal(http.ListenAndServe(":"+service.Port, builder.Router))
}
