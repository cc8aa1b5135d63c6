package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "BDU Suport API",
        "description": "University admission backend: registration review, mini-app sessions, notification fan-out.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Back-office authentication"},
        {"name": "Registrations", "description": "Admission registration review workflow"},
        {"name": "MiniApp", "description": "Zalo mini-app sessions"},
        {"name": "Tasks", "description": "Scheduler-facing triggers: notifications and DW ingestion"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a back-office account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/audit-logs": {
            "get": {
                "tags": ["Auth"],
                "summary": "List the caller's recent back-office actions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admission-registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List admission registrations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "evaluation_method", "in": "query", "type": "integer"},
                    {"name": "major", "in": "query", "type": "integer"},
                    {"name": "college_exam_group", "in": "query", "type": "integer"},
                    {"name": "training_location", "in": "query", "type": "integer"},
                    {"name": "review_status", "in": "query", "type": "string", "enum": ["PENDING", "APPROVED", "REJECTED"]},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admission-registrations/{id}": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Get one admission registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or recalled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admission-registrations/{id}/review": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Approve or reject a pending registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "Reviewed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Already reviewed, not eligible or over quota", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or recalled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admission-registrations/export": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Export the filtered registration list",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/miniapp/auth/session": {
            "post": {
                "tags": ["MiniApp"],
                "summary": "Exchange a Zalo access token for a mini-app session",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterSessionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Raw Zalo profile payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Token rejected by provider", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Provider unreachable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["MiniApp"],
                "summary": "Check whether the presented mini-app session is still alive",
                "parameters": [
                    {"name": "access_token", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or expired session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tasks/notifications/attendance": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Compose attendance notifications for a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttendanceNotificationRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tasks/notifications/classification": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Compose classification notifications for a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassificationNotificationRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tasks/dw/attendances": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Ingest raw attendance rows into the warehouse store",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IngestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tasks/dw/classifications": {
            "post": {
                "tags": ["Tasks"],
                "summary": "Ingest raw classification rows into the warehouse store",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IngestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ReviewRequest": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["approve", "reject"]}
            },
            "required": ["decision"]
        },
        "RegisterSessionRequest": {
            "type": "object",
            "properties": {
                "token": {"type": "string"}
            },
            "required": ["token"]
        },
        "AttendanceNotificationRequest": {
            "type": "object",
            "properties": {
                "student_code": {"type": "integer"},
                "student_name": {"type": "string"},
                "recipient_ids": {"type": "array", "items": {"type": "integer"}},
                "date": {"type": "string", "format": "date"}
            },
            "required": ["student_code", "student_name", "recipient_ids", "date"]
        },
        "ClassificationNotificationRequest": {
            "type": "object",
            "properties": {
                "student_code": {"type": "integer"},
                "recipient_ids": {"type": "array", "items": {"type": "integer"}},
                "date": {"type": "string", "format": "date"}
            },
            "required": ["student_code", "recipient_ids", "date"]
        },
        "IngestRequest": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"type": "object"}}
            },
            "required": ["rows"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
