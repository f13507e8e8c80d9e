package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PSMS API",
        "description": "Primary school management API: assessment engine and timetable generator",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Login and identity"},
        {"name": "Registry", "description": "Pupils, classes, streams, subjects and staff"},
        {"name": "Marks", "description": "Mark submission and editing"},
        {"name": "Reports", "description": "Stored report projections and term aggregates"},
        {"name": "Timetables", "description": "Weekly timetable generation and reads"}
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
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/pupils": {
            "get": {
                "tags": ["Registry"],
                "summary": "List pupils",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "per_page", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Registry"],
                "summary": "Enroll pupil",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterPupilRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/marks": {
            "post": {
                "tags": ["Marks"],
                "summary": "Submit a pupil's marks for an exam",
                "description": "One submission per (pupil, exam); duplicates are rejected whole with DUPLICATE_ENTRY.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitMarksRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failure or duplicate submission"}
                }
            },
            "put": {
                "tags": ["Marks"],
                "summary": "Edit one subject's score",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateMarkRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Marks"],
                "summary": "Delete one subject's score",
                "parameters": [
                    {"name": "pupil_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "subject_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "exam_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/pupils/{id}/reports/{examID}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Stored report for one pupil and exam",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "examID", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No report for the pair"}
                }
            }
        },
        "/pupils/{id}/reports/{examID}/pdf": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report card PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "examID", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/pupils/{id}/exam-options": {
            "get": {
                "tags": ["Reports"],
                "summary": "Exams a pupil has marks for",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/terms/recompute": {
            "post": {
                "tags": ["Reports"],
                "summary": "Recompute a class's term aggregates and positions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecomputeTermRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Regenerate one class/stream timetable",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "No feasible assignment; previous timetable kept"}
                }
            }
        },
        "/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Weekly timetable for one class and stream",
                "parameters": [
                    {"name": "class_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "stream_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
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
                "pagination": {"type": "object"},
                "meta": {"type": "object"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RegisterPupilRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "class_id": {"type": "integer"},
                "stream_id": {"type": "integer"}
            }
        },
        "SubmitMarksRequest": {
            "type": "object",
            "properties": {
                "pupil_id": {"type": "integer"},
                "exam_name": {"type": "string"},
                "term": {"type": "integer"},
                "year": {"type": "integer"},
                "marks": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "subject_id": {"type": "integer"},
                            "score": {"type": "number"}
                        }
                    }
                }
            }
        },
        "UpdateMarkRequest": {
            "type": "object",
            "properties": {
                "pupil_id": {"type": "integer"},
                "exam_id": {"type": "integer"},
                "subject_id": {"type": "integer"},
                "score": {"type": "number"}
            }
        },
        "RecomputeTermRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "integer"},
                "term": {"type": "integer"},
                "year": {"type": "integer"}
            }
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "class_id": {"type": "integer"},
                "stream_id": {"type": "integer"}
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
