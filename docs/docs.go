// Package docs registers the PetAlert OpenAPI description with swag.
// Regenerate with: swag init -g cmd/api/main.go -o docs
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
        "/auth/register": {"post": {"tags": ["Auth"], "summary": "User registration", "responses": {"201": {"description": "User successfully registered"}, "409": {"description": "Email already registered"}}}},
        "/auth/login": {"post": {"tags": ["Auth"], "summary": "User login", "responses": {"200": {"description": "Successfully authenticated"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/logout": {"post": {"tags": ["Auth"], "summary": "User logout", "responses": {"200": {"description": "OK"}}}},
        "/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Get current user", "responses": {"200": {"description": "User information"}}}},
        "/auth/me/preferences": {"put": {"security": [{"BearerAuth": []}], "tags": ["Auth"], "summary": "Update notification preferences", "responses": {"200": {"description": "Updated user"}}}},
        "/pets": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Pets"], "summary": "List my pets", "responses": {"200": {"description": "Pets"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Pets"], "summary": "Register a pet", "responses": {"201": {"description": "Pet created"}}}
        },
        "/pets/{id}": {"get": {"security": [{"BearerAuth": []}], "tags": ["Pets"], "summary": "Get pet by ID", "responses": {"200": {"description": "Pet"}, "404": {"description": "Pet not found"}}}},
        "/alerts": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "List alerts", "responses": {"200": {"description": "List of alerts"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "Report a lost pet", "responses": {"201": {"description": "Alert created"}, "409": {"description": "Pet already has an active alert"}}}
        },
        "/alerts/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "Get alert by ID", "responses": {"200": {"description": "Alert details"}}},
            "patch": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "Edit alert", "responses": {"200": {"description": "Updated alert"}, "409": {"description": "Alert is no longer opened"}}}
        },
        "/alerts/{id}/status": {"post": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "Change alert status", "responses": {"200": {"description": "Updated alert"}, "409": {"description": "Transition not allowed or lost to a concurrent change"}}}},
        "/alerts/{id}/events": {"get": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "Alert history", "responses": {"200": {"description": "Events, newest first"}}}},
        "/alerts/{id}/events/latest": {"get": {"security": [{"BearerAuth": []}], "tags": ["Alerts"], "summary": "Latest alert event", "responses": {"200": {"description": "Latest event"}}}},
        "/alerts/{id}/subscription": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Subscriptions"], "summary": "Subscribe to an alert", "responses": {"201": {"description": "Subscribed"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["Subscriptions"], "summary": "Unsubscribe from an alert", "responses": {"200": {"description": "Unsubscribed"}}}
        },
        "/alerts/{id}/subscribers": {"get": {"security": [{"BearerAuth": []}], "tags": ["Subscriptions"], "summary": "List alert subscribers", "responses": {"200": {"description": "Subscriber ids"}}}},
        "/subscriptions": {"get": {"security": [{"BearerAuth": []}], "tags": ["Subscriptions"], "summary": "List my subscriptions", "responses": {"200": {"description": "Subscriptions"}}}},
        "/dead-letters": {"get": {"security": [{"BearerAuth": []}], "tags": ["Dead letters"], "summary": "List failed notifications", "responses": {"200": {"description": "Failed notifications"}}}},
        "/dead-letters/{eventId}": {"get": {"security": [{"BearerAuth": []}], "tags": ["Dead letters"], "summary": "Get failed notification", "responses": {"200": {"description": "Failed notification"}}}}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "PetAlert API",
	Description:      "Lost and found pet alerts with subscriber notifications.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
