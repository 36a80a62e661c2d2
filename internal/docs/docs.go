// Package docs registers the OpenAPI description served at /swagger.
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
    "paths": {
        "/api/health": {"get": {"tags": ["health"], "summary": "Liveness and storage check", "responses": {"200": {"description": "OK"}, "503": {"description": "Storage unavailable"}}}},
        "/api/health/details": {"get": {"tags": ["health"], "summary": "Connection pool, cache and rate limiter internals", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Missing or invalid reviewer token", "schema": {"$ref": "#/definitions/Error"}}, "503": {"description": "Storage unavailable"}}}},
        "/api/prompts": {"get": {"tags": ["prompts"], "summary": "List scenario prompts with their rubrics", "responses": {"200": {"description": "OK"}}}},
        "/api/prompts/{id}": {"get": {"tags": ["prompts"], "summary": "Get one prompt including its text", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}}}},
        "/api/prompts/{id}/validate": {"post": {"tags": ["prompts"], "summary": "Validate a complete score set against a rubric", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Scores"}}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid scores", "schema": {"$ref": "#/definitions/Error"}}}}},
        "/api/prompts/{id}/total": {"post": {"tags": ["prompts"], "summary": "Total a possibly partial score set", "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}, {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Scores"}}], "responses": {"200": {"description": "OK"}}}},
        "/api/leaderboard/top10": {"get": {"tags": ["leaderboard"], "summary": "Highest ranked candidates", "description": "Returns min(n, ranked candidates) entries. n is capped at the configured max_leaderboard_limit (100 by default), so a larger n returns at most that many.", "parameters": [{"name": "n", "in": "query", "type": "integer", "maximum": 100, "description": "How many entries (default 10, capped at max_leaderboard_limit)"}], "responses": {"200": {"description": "OK"}}}},
        "/api/leaderboard": {"get": {"tags": ["leaderboard"], "summary": "Paginated ranking", "parameters": [{"name": "page", "in": "query", "type": "integer"}, {"name": "limit", "in": "query", "type": "integer"}], "responses": {"200": {"description": "OK"}}}},
        "/api/candidates": {"post": {"tags": ["candidates"], "summary": "Register a candidate", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid", "schema": {"$ref": "#/definitions/Error"}}, "409": {"description": "Duplicate email", "schema": {"$ref": "#/definitions/Error"}}}}},
        "/api/candidates/{id}": {
            "get": {"tags": ["candidates"], "summary": "Candidate profile with evaluations and ranking", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}}},
            "delete": {"tags": ["candidates"], "summary": "Delete a candidate with its evaluations and ranking", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}}}
        },
        "/api/candidates/{id}/rank": {"get": {"tags": ["leaderboard"], "summary": "Rank and percentile of one candidate", "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not ranked", "schema": {"$ref": "#/definitions/Error"}}}}},
        "/api/candidates/skill/{skill}": {"get": {"tags": ["candidates"], "summary": "Candidates with a primary or secondary skill", "parameters": [{"name": "skill", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}}}},
        "/api/candidates/{id}/evaluations": {"post": {"tags": ["evaluations"], "summary": "Record a scored response", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid", "schema": {"$ref": "#/definitions/Error"}}, "409": {"description": "Already evaluated", "schema": {"$ref": "#/definitions/Error"}}}}},
        "/api/candidates/{id}/evaluations/{promptId}": {"delete": {"tags": ["evaluations"], "summary": "Remove an evaluation so the prompt can be re-evaluated", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}, {"name": "promptId", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}}}},
        "/api/candidates/{id}/share": {
            "post": {"tags": ["sharing"], "summary": "Issue a share link, replacing any previous one", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"201": {"description": "Created"}, "404": {"description": "Not ranked", "schema": {"$ref": "#/definitions/Error"}}}},
            "delete": {"tags": ["sharing"], "summary": "Revoke the candidate's share link", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}], "responses": {"204": {"description": "Revoked"}}}
        },
        "/api/share/{token}": {"get": {"tags": ["sharing"], "summary": "Read-only profile behind a share link", "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Unknown token", "schema": {"$ref": "#/definitions/Error"}}, "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/Error"}}}}},
        "/api/search": {"get": {"tags": ["candidates"], "summary": "Search candidates by name, email or primary skill", "parameters": [{"name": "q", "in": "query", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "400": {"description": "Blank query", "schema": {"$ref": "#/definitions/Error"}}}}},
        "/api/analytics/skills": {"get": {"tags": ["analytics"], "summary": "Candidate count and mean score per primary skill", "responses": {"200": {"description": "OK"}}}},
        "/api/analytics/evaluations": {"get": {"tags": ["analytics"], "summary": "Evaluation totals per prompt", "responses": {"200": {"description": "OK"}}}},
        "/api/auth/login": {"post": {"tags": ["auth"], "summary": "Exchange reviewer credentials for a bearer token", "responses": {"200": {"description": "OK"}, "401": {"description": "Bad credentials", "schema": {"$ref": "#/definitions/Error"}}}}}
    },
    "definitions": {
        "Scores": {
            "type": "object",
            "properties": {
                "rubric_scores": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "Error": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "kind": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object"},
                        "request_id": {"type": "string"}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Candidate Evaluation API",
	Description:      "Rubric scoring, rankings and shareable candidate profiles.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
