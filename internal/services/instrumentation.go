package services

import "go.opentelemetry.io/otel"

const scopeName = "portfolio-backend/internal/services"

var tracer = otel.Tracer(scopeName)
