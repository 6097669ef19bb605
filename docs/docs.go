// Package docs is generated by swaggo/swag from the handler annotations.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/api/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [{"in": "body", "name": "credentials", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}
            }
        },
        "/api/me": {
            "get": {"tags": ["auth"], "summary": "Current user", "responses": {"200": {"description": "OK"}}}
        },
        "/api/letters": {
            "get": {
                "tags": ["letters"],
                "summary": "List letters",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["letters"],
                "summary": "Create a draft letter",
                "parameters": [{"in": "body", "name": "letter", "required": true, "schema": {"$ref": "#/definitions/workflow.CreateLetterInput"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errors.ErrorResponse"}}}
            }
        },
        "/api/letters/{id}": {
            "get": {"tags": ["letters"], "summary": "Get a letter", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["letters"], "summary": "Edit a draft", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"tags": ["letters"], "summary": "Delete a draft", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/letters/{id}/submit": {
            "post": {"tags": ["workflow"], "summary": "Submit a draft for approval", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/api/letters/{id}/steps/{level}": {
            "post": {"tags": ["workflow"], "summary": "Approve or reject a workflow step", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "level", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/letters/{id}/approve": {
            "post": {"tags": ["workflow"], "summary": "Approve the current step", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/letters/{id}/reject": {
            "post": {"tags": ["workflow"], "summary": "Reject the current step", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/letters/{id}/sign": {
            "post": {"tags": ["workflow"], "summary": "Sign an approved letter", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/letters/{id}/render": {
            "get": {"tags": ["render"], "summary": "Render a letter", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "enum": ["html", "pdf", "qr"], "name": "format", "in": "query"}], "responses": {"200": {"description": "OK"}, "504": {"description": "Gateway Timeout"}}}
        },
        "/api/letters/{id}/deliver": {
            "post": {"tags": ["delivery"], "summary": "Deliver a signed letter", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/letters/{id}/emails": {
            "get": {"tags": ["delivery"], "summary": "Delivery log of a letter", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/delivery/sweep": {
            "post": {"tags": ["delivery"], "summary": "Run the delivery sweep now", "responses": {"200": {"description": "OK"}}}
        },
        "/api/workflow/chains": {
            "get": {"tags": ["workflow"], "summary": "List approval chains", "responses": {"200": {"description": "OK"}}}
        },
        "/api/templates": {
            "get": {"tags": ["templates"], "summary": "List templates", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["templates"], "summary": "Create a template", "responses": {"201": {"description": "Created"}}}
        },
        "/api/templates/{id}": {
            "get": {"tags": ["templates"], "summary": "Get a template", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["templates"], "summary": "Update a template", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["templates"], "summary": "Delete a template", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/permissions/roles": {
            "get": {"tags": ["permissions"], "summary": "Role permission table", "responses": {"200": {"description": "OK"}}}
        },
        "/api/permissions/me": {
            "get": {"tags": ["permissions"], "summary": "Caller's permission set", "responses": {"200": {"description": "OK"}}}
        },
        "/api/users": {
            "get": {"tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["users"], "summary": "Create a user", "responses": {"201": {"description": "Created"}}}
        },
        "/api/users/{id}/role": {
            "put": {"tags": ["users"], "summary": "Change a user's role", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/reports/metrics": {
            "get": {"tags": ["reports"], "summary": "Dashboard metrics", "responses": {"200": {"description": "OK"}}}
        },
        "/api/reports/export": {
            "get": {"tags": ["reports"], "summary": "Export the letter register", "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/audit-logs": {
            "get": {"tags": ["audit"], "summary": "List audit logs", "responses": {"200": {"description": "OK"}}}
        },
        "/api/notifications": {
            "get": {"tags": ["notifications"], "summary": "List notifications", "responses": {"200": {"description": "OK"}}}
        },
        "/api/verify/{key}": {
            "get": {"tags": ["verify"], "summary": "Verify a signed letter", "security": [], "parameters": [{"type": "string", "name": "key", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/health": {
            "get": {"tags": ["system"], "summary": "Liveness and storage check", "security": [], "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        }
    },
    "definitions": {
        "auth.LoginRequest": {
            "type": "object",
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "errors.ErrorResponse": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "details": {}}
        },
        "workflow.CreateLetterInput": {
            "type": "object",
            "properties": {
                "subject": {"type": "string"},
                "department": {"type": "string"},
                "template_id": {"type": "string"},
                "merge_values": {"type": "object", "additionalProperties": {"type": "string"}},
                "body": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "priority": {"type": "string", "enum": ["Low", "Normal", "High"]},
                "is_confidential": {"type": "boolean"},
                "recipients": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "go-elms API",
	Description:      "Electronic letter management: drafting, approval chains, signing and public verification.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
