package queue

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/licence-store/internal/config"
	"github.com/licence-store/internal/constants"
	"github.com/licence-store/internal/models"
	"github.com/licence-store/internal/orderline"
)

func TestDisabledClientRejectsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	err = client.EnqueueOrderLineRetry(OrderLineRetryPayload{UserID: 1})
	if !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("want ErrQueueDisabled got %v", err)
	}
	if err := client.EnqueueCatalogRefresh(CatalogRefreshPayload{Reason: "manual"}, time.Second); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("want ErrQueueDisabled got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client: %v", err)
	}
}

func TestNilClientIsDisabled(t *testing.T) {
	var client *Client
	if client.Enabled() {
		t.Fatalf("nil client should be disabled")
	}
}

func TestOrderLineRetryTaskPayload(t *testing.T) {
	payload := OrderLineRetryPayload{
		UserID: 7,
		Op: orderline.Op{
			Kind:    constants.LineOpUpdate,
			OrderID: 42,
			LineID:  9,
			Item: orderline.Item{
				ProductID:   3,
				ProductName: "Antivirus",
				Quantity:    2,
				UnitPrice:   models.MustMoney("15.50"),
			},
		},
	}
	task, err := NewOrderLineRetryTask(payload)
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskOrderLineRetry {
		t.Fatalf("want type %s got %s", TaskOrderLineRetry, task.Type())
	}
	var decoded OrderLineRetryPayload
	if err := json.Unmarshal(task.Payload(), &decoded); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if decoded.UserID != 7 || decoded.Op.LineID != 9 || decoded.Op.Kind != constants.LineOpUpdate {
		t.Fatalf("unexpected payload %+v", decoded)
	}
	if !decoded.Op.Item.UnitPrice.Equal(models.MustMoney("15.50")) {
		t.Fatalf("want unit price 15.50 got %s", decoded.Op.Item.UnitPrice.String())
	}
}

func TestCatalogRefreshTaskType(t *testing.T) {
	task, err := NewCatalogRefreshTask(CatalogRefreshPayload{Reason: "admin_write"})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskCatalogRefresh {
		t.Fatalf("want type %s got %s", TaskCatalogRefresh, task.Type())
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("want default addr got %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("want concurrency 10 got %d", cfg.Concurrency)
	}
	if cfg.Queues[constants.QueueCritical] <= cfg.Queues[constants.QueueDefault] {
		t.Fatalf("critical queue should outweigh default: %v", cfg.Queues)
	}

	opt, cfg = BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2, Concurrency: 4})
	if opt.Addr != "redis:6380" || opt.DB != 2 || cfg.Concurrency != 4 {
		t.Fatalf("unexpected server config addr=%s db=%d concurrency=%d", opt.Addr, opt.DB, cfg.Concurrency)
	}
}
