package out

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/ggonzalez94/evm-agent/internal/config"
	"github.com/ggonzalez94/evm-agent/internal/model"
)

func TestRenderJSONSelectResultsOnly(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data:    []map[string]any{{"name": "swap", "description": "x"}},
		Meta:    model.EnvelopeMeta{Timestamp: time.Now()},
	}
	settings := config.Settings{OutputMode: "json", SelectFields: []string{"name"}, ResultsOnly: true}
	var buf bytes.Buffer
	if err := Render(&buf, env, settings); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if len(out) != 1 || out[0]["name"] != "swap" {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	if _, ok := out[0]["description"]; ok {
		t.Fatalf("field projection failed: %s", buf.String())
	}
}

func TestRenderPlainNetworksAndActions(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data:    []model.NetworkInfo{{Name: "base", ChainID: 8453, ExplorerHost: "basescan.org", RPCURL: "http://localhost:8545", Active: true}},
		Meta:    model.EnvelopeMeta{Timestamp: time.Now()},
	}
	settings := config.Settings{OutputMode: "plain", ResultsOnly: true}
	var buf bytes.Buffer
	if err := Render(&buf, env, settings); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := buf.String(); got != "base chain_id=8453 explorer=basescan.org rpc=http://localhost:8545 (active)\n" {
		t.Fatalf("unexpected plain output: %q", got)
	}

	env.Data = []model.ActionInfo{{
		Name:        "transfer",
		Description: "Send native coin or tokens",
		Parameters: []model.ParamInfo{
			{Name: "to_address", Required: true},
			{Name: "amount", Required: true},
			{Name: "token_address"},
		},
	}}
	buf.Reset()
	if err := Render(&buf, env, settings); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := buf.String(); got != "transfer(to_address, amount, token_address?)  Send native coin or tokens\n" {
		t.Fatalf("unexpected action line: %q", got)
	}
}

type historyLine string

func (h historyLine) PlainLine() string { return "entry " + string(h) }

func TestRenderPlainEnvelopeStatusAndWarnings(t *testing.T) {
	env := model.Envelope{
		Version:  "v1",
		Success:  true,
		Data:     []historyLine{"a", "b"},
		Warnings: []string{"cache unavailable"},
		Meta:     model.EnvelopeMeta{Command: "history list", Network: "base", RequestID: "req-1"},
	}
	var buf bytes.Buffer
	if err := Render(&buf, env, config.Settings{OutputMode: "plain"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := "ok history list network=base request_id=req-1\nentry a\nentry b\nwarning: cache unavailable\n"
	if buf.String() != want {
		t.Fatalf("unexpected plain envelope:\n got %q\nwant %q", buf.String(), want)
	}

	env = model.Envelope{
		Version: "v1",
		Data:    []any{},
		Error:   &model.ErrorBody{Code: 23, Type: "insufficient_balance", Message: "Insufficient balance. Required: 2, Available: 1"},
	}
	buf.Reset()
	if err := Render(&buf, env, config.Settings{OutputMode: "plain"}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got := buf.String(); got != "error insufficient_balance (exit 23): Insufficient balance. Required: 2, Available: 1\n" {
		t.Fatalf("unexpected error line: %q", got)
	}
}

func TestRenderSelectProjectsActionResult(t *testing.T) {
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data:    model.ActionResult{Action: "get-token-by-ticker", Result: model.TokenMatch{Ticker: "usdc", Address: "0xabc", Symbol: "USDC"}},
	}
	var buf bytes.Buffer
	settings := config.Settings{OutputMode: "json", ResultsOnly: true, SelectFields: []string{"address"}}
	if err := Render(&buf, env, settings); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var decoded struct {
		Action string         `json:"action"`
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json decode failed: %v output=%s", err, buf.String())
	}
	if decoded.Action != "get-token-by-ticker" || len(decoded.Result) != 1 || decoded.Result["address"] != "0xabc" {
		t.Fatalf("unexpected projection: %s", buf.String())
	}
}

func TestRenderPlainActionResultVerbatim(t *testing.T) {
	msg := "Swap transaction sent! (allow time for scanner to populate it):\nTransaction: https://etherscan.io/tx/0x1"
	env := model.Envelope{
		Version: "v1",
		Success: true,
		Data:    model.ActionResult{Action: "swap", Result: msg},
		Meta:    model.EnvelopeMeta{Timestamp: time.Now()},
	}
	var buf bytes.Buffer
	if err := Render(&buf, env, config.Settings{OutputMode: "plain", ResultsOnly: true}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.String() != msg+"\n" {
		t.Fatalf("expected verbatim result, got %q", buf.String())
	}

	buf.Reset()
	if err := Render(&buf, env, config.Settings{OutputMode: "json", ResultsOnly: true}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var decoded model.ActionResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded.Result != msg {
		t.Fatalf("unexpected json result: %s (%v)", buf.String(), err)
	}
}
