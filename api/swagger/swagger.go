package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Factory Ops Scheduling API",
        "description": "Machine assignment & scheduling for the factory operations console",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Assignments", "description": "Machine assignment batches, reassignment and lifecycle"},
        {"name": "Timeline", "description": "Gantt window projection"},
        {"name": "Export", "description": "Printable schedule documents"},
        {"name": "Machines", "description": "Machine park reads"},
        {"name": "WorkOrders", "description": "Work order reads and audit trail"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/api/v1/assignments": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Create an assignment batch for a work order",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Batch created"},
                    "400": {"description": "Invalid payload"},
                    "403": {"description": "Override not authorized"},
                    "412": {"description": "Quality gate or machine availability failed"}
                }
            }
        },
        "/api/v1/assignments/{id}/machine": {
            "patch": {
                "tags": ["Assignments"],
                "summary": "Move an assignment to another machine",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReassignRequest"}}
                ],
                "responses": {
                    "200": {"description": "Assignment, with overlap metadata when applicable"},
                    "404": {"description": "Assignment or target machine not found"},
                    "409": {"description": "Overlap forbidden by policy"}
                }
            }
        },
        "/api/v1/assignments/{id}/status": {
            "patch": {
                "tags": ["Assignments"],
                "summary": "Apply a lifecycle transition",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated assignment"},
                    "409": {"description": "Illegal transition"}
                }
            }
        },
        "/api/v1/timeline": {
            "get": {
                "tags": ["Timeline"],
                "summary": "Project a timeline window onto pixel space",
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string"},
                    {"name": "zoom", "in": "query", "type": "string", "enum": ["hour", "day", "week"]}
                ],
                "responses": {
                    "200": {"description": "Projection"}
                }
            }
        },
        "/api/v1/schedule/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Export the schedule of all machines in a window",
                "parameters": [
                    {"name": "start", "in": "query", "required": true, "type": "string"},
                    {"name": "zoom", "in": "query", "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"]}
                ],
                "responses": {
                    "200": {"description": "Document bytes"}
                }
            }
        },
        "/api/v1/machines": {
            "get": {
                "tags": ["Machines"],
                "summary": "List machines",
                "responses": {
                    "200": {"description": "Machines"}
                }
            }
        },
        "/api/v1/work-orders/{id}": {
            "get": {
                "tags": ["WorkOrders"],
                "summary": "Get a work order",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Work order"},
                    "404": {"description": "Not found"}
                }
            }
        }
    },
    "definitions": {
        "CreateAssignmentsRequest": {
            "type": "object",
            "required": ["work_order_id", "machine_ids", "start"],
            "properties": {
                "work_order_id": {"type": "string"},
                "machine_ids": {"type": "array", "items": {"type": "string"}},
                "start": {"type": "string", "format": "date-time"},
                "override_cycle_time": {"type": "number"}
            }
        },
        "ReassignRequest": {
            "type": "object",
            "required": ["machine_id"],
            "properties": {
                "machine_id": {"type": "string"}
            }
        },
        "StatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["scheduled", "running", "paused", "completed", "cancelled"]}
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
                "meta": {"type": "object"}
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
