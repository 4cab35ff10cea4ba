//go:build lambda

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type optimizeRequest struct {
	UserID          int      `json:"userId"`
	Gameweek        int      `json:"gameweek"`
	Metric          string   `json:"metric"`
	TopN            *int     `json:"topN"`
	FreeTransfers   *int     `json:"freeTransfers"`
	TransferCost    *float64 `json:"transferCost"`
	BenchPointValue *float64 `json:"benchPointValue"`
	Squad           []string `json:"squad"`
	Bank            float64  `json:"bank"`
}

// apply overlays the request onto cfg.
func (req optimizeRequest) apply(cfg *Config) {
	cfg.UserID = req.UserID
	cfg.Gameweek = req.Gameweek
	if req.Metric != "" {
		cfg.Metric = req.Metric
	}
	if req.TopN != nil {
		cfg.TopNPlayers = *req.TopN
	}
	if req.FreeTransfers != nil {
		cfg.FreeTransfers = *req.FreeTransfers
	}
	if req.TransferCost != nil {
		cfg.TransferCost = *req.TransferCost
	}
	if req.BenchPointValue != nil {
		cfg.BenchPointValue = *req.BenchPointValue
	}
	if len(req.Squad) > 0 {
		cfg.Squad = CustomSquad{Names: req.Squad, Bank: req.Bank}
	}
}

func handler(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req optimizeRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}
	if req.UserID == 0 && len(req.Squad) == 0 {
		return errResp(400, "missing userId or squad")
	}

	cfg := DefaultConfig()
	req.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return errResp(400, err.Error())
	}

	log, err := newLogger(false)
	if err != nil {
		return errResp(500, err.Error())
	}
	defer func() { _ = log.Sync() }()

	client, err := NewClient(cfg.APIBaseURL, cfg.LoginURL, log)
	if err != nil {
		return errResp(500, err.Error())
	}
	r, err := runOptimize(ctx, cfg, newFPLSource(client, cfg, log), log, runHooks{})
	switch {
	case errors.Is(err, ErrNoFeasibleSquad), errors.Is(err, ErrPlayerNotFound):
		return errResp(422, err.Error())
	case err != nil:
		log.Error("optimize failed", zap.Error(err))
		return errResp(502, fmt.Sprintf("optimize: %v", err))
	}

	respJSON, _ := json.Marshal(r)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
