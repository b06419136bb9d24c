package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FOMO Portal API",
        "description": "Session-backed portal in front of the FOMO campus CMS",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Authentication", "description": "Portal session lifecycle"},
        {"name": "Pages", "description": "Public pages"},
        {"name": "College", "description": "College profile and student listing"},
        {"name": "Student", "description": "Student profiles and media"}
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
                    "503": {"description": "A dependency is down"}
                }
            }
        },
        "/metrics": {
            "get": {
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/": {
            "get": {
                "tags": ["Pages"],
                "summary": "Home page viewer",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/session": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Start a portal session",
                "description": "Store the CMS token issued at login and set the session cookie. The user is always fetched from users/me; a supplied user must match it.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SessionInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Authentication"],
                "summary": "End the portal session",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/college-profile": {
            "post": {
                "tags": ["College"],
                "summary": "Create the college profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CollegeProfileInput"}}
                ],
                "responses": {
                    "303": {"description": "Redirect to the dashboard", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/colleges/profile": {
            "get": {
                "tags": ["College"],
                "summary": "College profile page",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "303": {"description": "Redirect to setup or login", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["College"],
                "summary": "Delete the college profile",
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/colleges/profile/status": {
            "get": {
                "tags": ["College"],
                "summary": "College profile completion",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/colleges/profile/edit": {
            "post": {
                "tags": ["College"],
                "summary": "Enter edit mode",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/colleges/profile/draft": {
            "patch": {
                "tags": ["College"],
                "summary": "Change draft fields",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/colleges/profile/cancel": {
            "post": {
                "tags": ["College"],
                "summary": "Leave edit mode without saving",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/colleges/profile/save": {
            "post": {
                "tags": ["College"],
                "summary": "Save the draft",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Save already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/colleges/students": {
            "get": {
                "tags": ["College"],
                "summary": "Student listing",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "303": {"description": "Redirect to setup or login", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/colleges/students/export": {
            "get": {
                "tags": ["College"],
                "summary": "Export the student listing",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile": {
            "get": {
                "tags": ["Student"],
                "summary": "Student profile page",
                "parameters": [
                    {"name": "userId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Student"],
                "summary": "Create a student profile",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentProfileInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile/{documentId}": {
            "put": {
                "tags": ["Student"],
                "summary": "Update a student profile",
                "parameters": [
                    {"name": "documentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentProfileInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile/status": {
            "get": {
                "tags": ["Student"],
                "summary": "Student profile completion",
                "parameters": [
                    {"name": "userId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profile/media": {
            "post": {
                "tags": ["Student"],
                "summary": "Upload a profile image",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SessionInput": {
            "type": "object",
            "properties": {
                "jwt": {"type": "string"},
                "user": {
                    "type": "object",
                    "properties": {
                        "id": {"type": "integer"},
                        "documentId": {"type": "string"},
                        "username": {"type": "string"},
                        "email": {"type": "string"}
                    }
                }
            },
            "required": ["jwt"]
        },
        "CollegeProfileInput": {
            "type": "object",
            "properties": {
                "collegeName": {"type": "string"},
                "description": {"type": "string"},
                "ranking": {"type": "string"},
                "location": {"type": "string"},
                "numberOfStudents": {"type": "string"},
                "establishmentDate": {"type": "string"}
            },
            "required": ["collegeName", "description", "location", "numberOfStudents", "establishmentDate"]
        },
        "StudentProfileInput": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "about": {"type": "string"},
                "college": {"type": "string"},
                "course": {"type": "string"},
                "graduationYear": {"type": "string"},
                "location": {"type": "string"},
                "skills": {"type": "array", "items": {"type": "string"}},
                "interests": {"type": "array", "items": {"type": "string"}},
                "profilePic": {"type": "integer"},
                "backgroundImage": {"type": "integer"}
            },
            "required": ["studentId", "name"]
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
