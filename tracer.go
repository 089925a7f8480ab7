package grpcprom

import (
	"log"
	"os"
	"strings"

	"github.com/opentracing/opentracing-go"
	zipkin "github.com/openzipkin/zipkin-go-opentracing"
	"github.com/sirupsen/logrus"
)

// tracerFromEnv builds a Zipkin opentracing tracer when one of the
// Zipkin endpoint env vars is set, otherwise returns nil and the
// service runs untraced.
func tracerFromEnv(opts options) opentracing.Tracer {
	var c zipkin.Collector
	var err error

	w := logrus.StandardLogger().Writer()
	l := log.New(w, "Zipkin: ", 0)

	if u := os.Getenv("ZIPKIN_HTTP_ENDPOINT"); u != "" {
		c, err = zipkin.NewHTTPCollector(
			u,
			zipkin.HTTPLogger(zipkin.LogWrapper(l)),
		)
	}

	if u := os.Getenv("ZIPKIN_KAFKA_ENDPOINTS"); u != "" {
		c, err = zipkin.NewKafkaCollector(
			strings.Split(u, ","),
			zipkin.KafkaLogger(zipkin.LogWrapper(l)),
		)
	}

	if err != nil {
		logrus.Errorf("Zipkin collector error: %s", err)
		return nil
	}

	if c == nil {
		return nil
	}

	t, err := zipkin.NewTracer(
		zipkin.NewRecorder(c, false, opts.name, opts.name),
		zipkin.ClientServerSameSpan(true), // for Zipkin V1 RPC span style
	)
	if err != nil {
		logrus.Errorf("Zipkin tracer error: %s", err)
		return nil
	}

	return t
}
