// Package docs registers the OpenAPI document served at /swagger.
// The template below is maintained by hand and covers the main routes;
// swag init -g cmd/api/main.go builds a complete one from the handler annotations.
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
        "/users": {
            "get": {"tags": ["users"], "summary": "List all users", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["users"], "summary": "Create a new user", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/users/{id}": {
            "get": {"tags": ["users"], "summary": "Get user by ID", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["users"], "summary": "Update a user", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["users"], "summary": "Delete a user", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/groups": {
            "get": {"tags": ["groups"], "summary": "List groups", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["groups"], "summary": "Create a group", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/groups/{id}": {
            "get": {"tags": ["groups"], "summary": "Get a group with its members", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["groups"], "summary": "Rename a group", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["groups"], "summary": "Delete a group", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/groups/{id}/members": {
            "get": {"tags": ["groups"], "summary": "List group members", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["groups"], "summary": "Add a member", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/groups/{id}/members/{userId}": {
            "delete": {"tags": ["groups"], "summary": "Remove a member", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "userId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/groups/{id}/expenses": {
            "get": {"tags": ["expenses"], "summary": "List a group's expenses", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["expenses"], "summary": "Record an expense in a group", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/groups/{id}/balances": {
            "get": {"tags": ["balances"], "summary": "Per-member balances", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/groups/{id}/transfers": {
            "get": {"tags": ["balances"], "summary": "Suggested settling transfers", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/expenses": {
            "get": {"tags": ["expenses"], "summary": "List expenses", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["expenses"], "summary": "Record an expense", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/expenses/{id}": {
            "get": {"tags": ["expenses"], "summary": "Get an expense", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"tags": ["expenses"], "summary": "Update an expense", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["expenses"], "summary": "Delete an expense", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/notifications": {
            "get": {"tags": ["notifications"], "summary": "List notifications", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/notifications/unread-count": {
            "get": {"tags": ["notifications"], "summary": "Count unread notifications", "responses": {"200": {"description": "OK"}}}
        },
        "/notifications/{id}/read": {
            "post": {"tags": ["notifications"], "summary": "Mark a notification as read", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/notifications/read-all": {
            "post": {"tags": ["notifications"], "summary": "Mark every notification as read", "responses": {"200": {"description": "OK"}}}
        }
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
	Title:            "Group Ledger API",
	Description:      "Shared-expense ledger: groups, members, expenses and per-member balances.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
