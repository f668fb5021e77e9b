package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/butler/internal/auth"
	"github.com/nulzo/butler/internal/cli"
	"github.com/nulzo/butler/internal/config"
	"github.com/nulzo/butler/internal/gateway"
	"github.com/nulzo/butler/internal/llm"
	"github.com/nulzo/butler/internal/server"
	vegeta "github.com/tsenart/vegeta/v12/lib"
	"go.uber.org/zap"

	_ "github.com/nulzo/butler/internal/llm/openai"
)

var unaryResp = []byte(`{"id":"bench-123","choices":[{"message":{"role":"assistant","content":"Hello"}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`)

type report struct {
	Requests   uint64   `json:"requests"`
	Success    float64  `json:"success_ratio"`
	Throughput float64  `json:"throughput_rps"`
	Mean       string   `json:"latency_mean"`
	P50        string   `json:"latency_p50"`
	P99        string   `json:"latency_p99"`
	Max        string   `json:"latency_max"`
	Errors     []string `json:"errors,omitempty"`
}

func main() {
	duration := flag.Duration("duration", 10*time.Second, "Duration of the test")
	rate := flag.Int("rate", 50, "Requests per second")
	upstreamDelay := flag.Duration("upstream-delay", 10*time.Millisecond, "Simulated provider latency")
	flag.Parse()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(*upstreamDelay)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(unaryResp)
	}))
	defer upstream.Close()

	gin.SetMode(gin.ReleaseMode)

	cfg := &config.Config{
		App:    config.AppConfig{Name: "Butler", Version: "bench"},
		Server: config.ServerConfig{Env: "production"},
		Auth:   config.AuthConfig{Secret: "bench-secret", Algorithm: "HS256", TTLMinutes: 60},
		Providers: config.ProvidersConfig{
			OpenAI: config.ProviderConfig{APIKey: "mock-key", BaseURL: upstream.URL + "/v1"},
		},
		Gateway: config.GatewayConfig{RequestTimeout: 30 * time.Second},
	}

	logger := zap.NewNop()

	verifier, err := auth.NewVerifier(cfg.Auth.Secret, cfg.Auth.Algorithm, cfg.Auth.TTL())
	if err != nil {
		log.Fatalf("Failed to build verifier: %v", err)
	}
	token, err := verifier.Issue("bench@example.com")
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	providers := gateway.BootstrapProviders(cfg.Providers, logger)
	if _, ok := providers[llm.OpenAI]; !ok {
		log.Fatal("openai adapter did not bootstrap")
	}

	srv := server.New(cfg, logger, verifier, auth.PassthroughDirectory{}, gateway.NewService(logger, providers, cfg.Gateway.RequestTimeout))
	app := httptest.NewServer(srv.Handler())
	defer app.Close()

	fmt.Printf("%s Running benchmark: %s duration, %d req/s\n", cli.CheckMark(), *duration, *rate)

	targeter := vegeta.NewStaticTargeter(vegeta.Target{
		Method: http.MethodPost,
		URL:    app.URL + "/api/v1/ai/chat",
		Body:   []byte(`{"message": "Hello", "provider": "openai"}`),
		Header: http.Header{
			"Content-Type":  []string{"application/json"},
			"Authorization": []string{"Bearer " + token.Value},
		},
	})

	attacker := vegeta.NewAttacker(vegeta.KeepAlive(true))
	var metrics vegeta.Metrics

	for res := range attacker.Attack(targeter, vegeta.Rate{Freq: *rate, Per: time.Second}, *duration, "Benchmark") {
		metrics.Add(res)
	}
	metrics.Close()

	r := report{
		Requests:   metrics.Requests,
		Success:    metrics.Success,
		Throughput: metrics.Throughput,
		Mean:       metrics.Latencies.Mean.String(),
		P50:        metrics.Latencies.P50.String(),
		P99:        metrics.Latencies.P99.String(),
		Max:        metrics.Latencies.Max.String(),
	}
	if len(metrics.Errors) > 5 {
		r.Errors = metrics.Errors[:5]
	} else {
		r.Errors = metrics.Errors
	}

	cli.PrettyPrint(r)
}
