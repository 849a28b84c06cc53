package store

import (
	"context"

	"github.com/matzehuels/archview/pkg/catalog"
)

// Seed installs the sample catalog into s.
func Seed(ctx context.Context, s Importer) error {
	return s.Import(ctx, Sample())
}

// Sample returns a small e-commerce catalog: seven systems, six
// connections and three journeys.
func Sample() Catalog {
	return Catalog{
		Systems:     sampleSystems(),
		Connections: sampleConnections(),
		Journeys:    sampleJourneys(),
	}
}

func status(dev, stage, prod catalog.Health) catalog.Status {
	return catalog.Status{catalog.EnvDev: dev, catalog.EnvStage: stage, catalog.EnvProd: prod}
}

func port(p int) *int { return &p }

func sampleSystems() []catalog.System {
	const (
		ok       = catalog.HealthHealthy
		degraded = catalog.HealthDegraded
	)
	sys := func(id, name, domain, desc string, tags []string, owner, email, docTitle string, st catalog.Status) catalog.System {
		return catalog.System{
			ID:          id,
			Name:        name,
			Domain:      domain,
			Description: desc,
			Tags:        tags,
			Owners:      []catalog.Owner{{Name: owner, Email: email}},
			Docs:        []catalog.Doc{{Title: docTitle, URL: "https://docs.example.com/" + id}},
			Status:      st,
		}
	}
	return []catalog.System{
		sys("web", "Web Frontend", "app.example.com", "Customer-facing web application",
			[]string{"frontend", "customer"}, "Frontend Team", "frontend@example.com", "Web App Docs", status(ok, ok, ok)),
		sys("bff", "Backend for Frontend", "bff.example.com", "API gateway for web clients",
			[]string{"backend", "api"}, "API Team", "api@example.com", "BFF API Docs", status(ok, degraded, ok)),
		sys("auth", "Auth Service", "auth.example.com", "Authentication and authorization service",
			[]string{"backend", "security"}, "Security Team", "security@example.com", "Auth Service Docs", status(ok, ok, ok)),
		sys("core", "Core Service", "core.example.com", "Core business logic service",
			[]string{"backend", "core"}, "Platform Team", "platform@example.com", "Core Service Docs", status(ok, ok, ok)),
		sys("db", "Database", "db.example.com", "Primary PostgreSQL database",
			[]string{"data", "storage"}, "Data Team", "data@example.com", "Database Schema", status(ok, ok, ok)),
		sys("mq", "Message Queue", "mq.example.com", "RabbitMQ message broker",
			[]string{"messaging", "events"}, "Platform Team", "platform@example.com", "MQ Docs", status(ok, ok, degraded)),
		sys("pay", "Payment Service", "pay.example.com", "Payment processing service",
			[]string{"backend", "payments"}, "Payments Team", "payments@example.com", "Payment Service Docs", status(ok, ok, ok)),
	}
}

func sampleConnections() []catalog.Connection {
	const (
		ok       = catalog.HealthHealthy
		degraded = catalog.HealthDegraded
	)
	return []catalog.Connection{
		{ID: "c1", From: "web", To: "bff", Label: "HTTPS API Calls", Protocol: "HTTPS", Endpoint: "/api/v1", Port: port(443),
			Tags: []string{"api", "core"}, CredentialAlias: "web-to-bff-api-key", Status: status(ok, ok, ok)},
		{ID: "c2", From: "bff", To: "auth", Label: "Auth Validation", Protocol: "HTTPS", Endpoint: "/validate", Port: port(443),
			Tags: []string{"auth", "security"}, CredentialAlias: "bff-to-auth-jwt", Status: status(ok, degraded, ok)},
		{ID: "c3", From: "bff", To: "core", Label: "Business Logic", Protocol: "gRPC", Endpoint: "core.CoreService", Port: port(50051),
			Tags: []string{"core"}, CredentialAlias: "bff-to-core-mtls", Status: status(ok, ok, ok)},
		{ID: "c4", From: "core", To: "db", Label: "Database Queries", Protocol: "PostgreSQL", Port: port(5432),
			Tags: []string{"data", "core"}, CredentialAlias: "core-to-db-credentials", Status: status(ok, ok, ok)},
		{ID: "c5", From: "core", To: "mq", Label: "Publish Events", Protocol: "AMQP", Port: port(5672),
			Tags: []string{"events", "messaging"}, CredentialAlias: "core-to-mq-credentials", Status: status(ok, ok, degraded)},
		{ID: "c6", From: "bff", To: "pay", Label: "Payment Processing", Protocol: "HTTPS", Endpoint: "/process", Port: port(443),
			Tags: []string{"payments"}, CredentialAlias: "bff-to-pay-api-key", Status: status(ok, ok, ok)},
	}
}

func sampleJourneys() []catalog.JourneyEntry {
	return []catalog.JourneyEntry{
		{
			Path: "commerce/checkout/guest.journey.json",
			Journey: catalog.Journey{
				ID:          "commerce/checkout/guest",
				Name:        "Guest Checkout",
				Label:       "🛒 Guest Checkout",
				Description: "Anonymous user purchases without creating an account",
				Connections: []string{"c1", "c2", "c3", "c4"},
				Tags:        []string{"p0", "revenue", "commerce"},
				Owners:      []catalog.Owner{{Name: "Checkout PM", Email: "checkout@example.com"}},
				Docs:        []catalog.Doc{{Title: "Guest Checkout Flow", URL: "https://docs.example.com/guest-checkout"}},
			},
		},
		{
			Path: "commerce/payments/card-auth-capture.journey.json",
			Journey: catalog.Journey{
				ID:          "commerce/payments/card-auth-capture",
				Name:        "Card Auth & Capture Flow",
				Label:       "💳 Card Payment",
				Description: "Credit card authorization and capture process",
				Connections: []string{"c1", "c2", "c6", "c3"},
				Tags:        []string{"payments", "p0"},
				Owners:      []catalog.Owner{{Name: "Payments Lead", Email: "payments@example.com"}},
				Docs:        []catalog.Doc{{Title: "Payment Processing", URL: "https://docs.example.com/payments"}},
			},
		},
		{
			Path: "platform/events/order-placed.journey.json",
			Journey: catalog.Journey{
				ID:          "platform/events/order-placed",
				Name:        "Order Placed Event",
				Label:       "📦 Order Event",
				Description: "System behavior when an order is placed",
				Connections: []string{"c3", "c4", "c5"},
				Tags:        []string{"events", "p1"},
				Owners:      []catalog.Owner{{Name: "Platform Team", Email: "platform@example.com"}},
				Docs:        []catalog.Doc{{Title: "Event Architecture", URL: "https://docs.example.com/events"}},
			},
		},
	}
}
