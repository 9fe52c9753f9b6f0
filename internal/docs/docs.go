// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with `swag init -g cmd/api/main.go -o internal/docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "User registered and token generated"}, "400": {"description": "Invalid input"}, "409": {"description": "Email already registered"}}}
        },
        "/auth/login": {
            "post": {"tags": ["auth"], "summary": "Login user", "responses": {"200": {"description": "User authenticated and token generated"}, "401": {"description": "Invalid credentials"}, "403": {"description": "Account disabled"}}}
        },
        "/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["user"], "summary": "Get user profile", "responses": {"200": {"description": "User profile"}}}
        },
        "/users": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}}}
        },
        "/users/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get user by ID", "responses": {"200": {"description": "OK"}, "404": {"description": "User not found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Update user", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Delete user", "responses": {"204": {"description": "No Content"}}}
        },
        "/assets": {
            "get": {"tags": ["assets"], "summary": "List assets", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["assets"], "summary": "Create asset", "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate symbol"}}}
        },
        "/assets/symbol/{symbol}": {
            "get": {"tags": ["assets"], "summary": "Get asset by symbol", "responses": {"200": {"description": "OK"}, "404": {"description": "Asset not found"}}}
        },
        "/assets/{id}": {
            "get": {"tags": ["assets"], "summary": "Get asset by ID", "responses": {"200": {"description": "OK"}, "404": {"description": "Asset not found"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["assets"], "summary": "Update asset", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["assets"], "summary": "Delete asset", "responses": {"204": {"description": "No Content"}, "409": {"description": "Asset in use"}}}
        },
        "/assets/{id}/price": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["assets"], "summary": "Update asset price", "responses": {"200": {"description": "OK"}}}
        },
        "/assets/prices/bulk": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["assets"], "summary": "Bulk update prices", "responses": {"200": {"description": "OK"}}}
        },
        "/ingest/prices": {
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["ingest"], "summary": "Bulk update prices from a machine feed", "responses": {"200": {"description": "OK"}, "503": {"description": "Ingestion not configured"}}}
        },
        "/ingest/revalue": {
            "post": {"security": [{"ApiKeyAuth": []}], "tags": ["ingest"], "summary": "Revalue all portfolios", "responses": {"200": {"description": "OK"}, "503": {"description": "Ingestion not configured"}}}
        },
        "/portfolios": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["portfolios"], "summary": "List portfolios", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["portfolios"], "summary": "Create portfolio", "responses": {"201": {"description": "Created"}}}
        },
        "/portfolios/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["portfolios"], "summary": "Get portfolio", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["portfolios"], "summary": "Update portfolio", "responses": {"200": {"description": "OK"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["portfolios"], "summary": "Delete portfolio", "responses": {"204": {"description": "No Content"}, "409": {"description": "Portfolio has trades"}}}
        },
        "/portfolios/{id}/holdings": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["portfolios"], "summary": "Get portfolio holdings", "responses": {"200": {"description": "OK"}}}
        },
        "/portfolios/{id}/recalculate": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["portfolios"], "summary": "Recalculate portfolio value", "responses": {"200": {"description": "OK"}}}
        },
        "/portfolios/{id}/trades": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["portfolios"], "summary": "List portfolio trades", "responses": {"200": {"description": "OK"}}}
        },
        "/trades": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["trades"], "summary": "List trades", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["trades"], "summary": "Create trade", "responses": {"201": {"description": "Created"}}}
        },
        "/trades/statistics": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["trades"], "summary": "Trade statistics", "responses": {"200": {"description": "OK"}}}
        },
        "/trades/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["trades"], "summary": "Get trade", "responses": {"200": {"description": "OK"}}},
            "put": {"security": [{"BearerAuth": []}], "tags": ["trades"], "summary": "Update trade", "responses": {"200": {"description": "OK"}, "409": {"description": "Trade executed or invalid transition"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["trades"], "summary": "Delete trade", "responses": {"204": {"description": "No Content"}}}
        },
        "/trades/{id}/execute": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["trades"], "summary": "Execute trade", "responses": {"200": {"description": "OK"}, "422": {"description": "Insufficient holdings"}}}
        },
        "/trades/{id}/cancel": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["trades"], "summary": "Cancel trade", "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "X-API-Key", "in": "header"},
        "BearerAuth": {"description": "Type \"Bearer\" followed by a space and JWT token.", "type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Tradebook API",
	Description:      "Tradebook keeps investment records: an asset ledger, portfolios valued from their executed trades, and a trade ledger with a small state machine.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
