package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Wellbeing API",
        "description": "Student wellbeing insight reports and school-wide severity overview",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Insights", "description": "Per-student wellbeing reports"},
        {"name": "Wellbeing", "description": "School-wide severity overview"},
        {"name": "System", "description": "Service metrics"}
    ],
    "paths": {
        "/students/{id}/insights": {
            "get": {
                "tags": ["Insights"],
                "summary": "Student wellbeing insight report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/InsightReportEnvelope"}},
                    "400": {"description": "Invalid student id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Outside caller scope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "No wellbeing source could be read", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/insights": {
            "get": {
                "tags": ["Insights"],
                "summary": "Student wellbeing insight report by query parameter",
                "parameters": [
                    {"name": "student_id", "in": "query", "required": true, "type": "string", "format": "uuid"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/InsightReportEnvelope"}}
                }
            }
        },
        "/students/{id}/insights/export": {
            "get": {
                "tags": ["Insights"],
                "summary": "Download a student wellbeing report",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string", "format": "uuid"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"], "default": "pdf"}
                ],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}}
                }
            }
        },
        "/wellbeing/severity": {
            "get": {
                "tags": ["Wellbeing"],
                "summary": "Latest wellbeing severity per student",
                "parameters": [
                    {"name": "period_type", "in": "query", "type": "string", "default": "weekly"},
                    {"name": "risk_level", "in": "query", "type": "string", "enum": ["all", "low", "medium", "high", "critical"], "default": "all"},
                    {"name": "sort_by", "in": "query", "type": "string", "enum": ["risk_score", "overall_wellbeing_score", "emotional_wellbeing_score", "academic_wellbeing_score", "engagement_wellbeing_score", "analysis_date", "student_name"], "default": "risk_score"},
                    {"name": "sort_order", "in": "query", "type": "string", "enum": ["asc", "desc"], "default": "desc"},
                    {"name": "limit", "in": "query", "type": "integer", "minimum": 1, "maximum": 500, "default": 50}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Administrators only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/wellbeing/severity/export": {
            "get": {
                "tags": ["Wellbeing"],
                "summary": "Download the severity overview as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file", "schema": {"type": "file"}}
                }
            }
        },
        "/wellbeing/severity/refresh": {
            "post": {
                "tags": ["Wellbeing"],
                "summary": "Drop cached severity overviews of the caller's school",
                "responses": {
                    "204": {"description": "Cache cleared"}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated service metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Insight": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["activity", "academic", "attendance", "emotional", "support", "engagement"]},
                "level": {"type": "string", "enum": ["positive", "info", "concern", "urgent"]},
                "title": {"type": "string"},
                "message": {"type": "string"},
                "suggestion": {"type": "string"}
            }
        },
        "InsightReport": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "grade": {"type": "string"},
                "classes": {"type": "array", "items": {"type": "object"}},
                "currentAnalytics": {"type": "object"},
                "trends": {"type": "object"},
                "moodHistory": {"type": "array", "items": {"type": "object"}},
                "moodStats": {"type": "object"},
                "helpRequests": {"type": "array", "items": {"type": "object"}},
                "helpStats": {"type": "object"},
                "questStats": {"type": "object"},
                "historicalData": {"type": "array", "items": {"type": "object"}},
                "insights": {"type": "array", "items": {"$ref": "#/definitions/Insight"}},
                "unavailableSignals": {"type": "array", "items": {"type": "string"}},
                "generatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "InsightReportEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/InsightReport"},
                "meta": {"type": "object"}
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
