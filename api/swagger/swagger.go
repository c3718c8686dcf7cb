package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Lusia Grades API",
        "description": "Grade tracking and CFS calculation for Portuguese basic and secondary education.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Grades",
            "description": "Settings, enrollments, periods and evaluation elements"
        },
        {
            "name": "CFS",
            "description": "Final subject classifications and the secondary-school average"
        },
        {
            "name": "Observability",
            "description": "Health and metrics"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/metrics/summary": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Instrumentation summary",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/settings/{id}": {
            "get": {
                "tags": [
                    "Grades"
                ],
                "summary": "Get grade settings of an academic year",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/settings": {
            "post": {
                "tags": [
                    "Grades"
                ],
                "summary": "Set up an academic year",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateGradeSettingsRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Locked or finalized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/settings/past-year": {
            "post": {
                "tags": [
                    "Grades"
                ],
                "summary": "Set up an earlier academic year",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PastYearSetupRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/settings/{id}/lock": {
            "patch": {
                "tags": [
                    "Grades"
                ],
                "summary": "Lock grade settings",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/enrollments": {
            "get": {
                "tags": [
                    "Grades"
                ],
                "summary": "List subject enrollments",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "academicYear",
                        "in": "query",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Grades"
                ],
                "summary": "Enroll in a subject",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateEnrollmentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/enrollments/{id}": {
            "patch": {
                "tags": [
                    "Grades"
                ],
                "summary": "Update enrollment flags",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateEnrollmentRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/board/{academicYear}": {
            "get": {
                "tags": [
                    "Grades"
                ],
                "summary": "Grade board of an academic year",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "academicYear",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/periods/{id}": {
            "patch": {
                "tags": [
                    "Grades"
                ],
                "summary": "Record a period grade",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PeriodGradeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Locked or finalized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/periods/{id}/override": {
            "patch": {
                "tags": [
                    "Grades"
                ],
                "summary": "Override the calculated period grade",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PeriodOverrideRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Locked or finalized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/periods/{id}/elements": {
            "get": {
                "tags": [
                    "Grades"
                ],
                "summary": "List evaluation elements of a period",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Grades"
                ],
                "summary": "Replace the evaluation elements of a period",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ReplaceElementsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Locked or finalized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/periods/{id}/elements/copy": {
            "post": {
                "tags": [
                    "Grades"
                ],
                "summary": "Copy the element structure to the other periods",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/elements/{id}": {
            "patch": {
                "tags": [
                    "Grades"
                ],
                "summary": "Grade one evaluation element",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ElementGradeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Locked or finalized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/annual/{academicYear}": {
            "get": {
                "tags": [
                    "Grades"
                ],
                "summary": "Annual grades of an academic year",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "academicYear",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/annual": {
            "put": {
                "tags": [
                    "Grades"
                ],
                "summary": "Write a past-year annual grade",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateAnnualGradeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/cfs": {
            "get": {
                "tags": [
                    "CFS"
                ],
                "summary": "CFD per subject and CFS preview",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/cfs/export": {
            "get": {
                "tags": [
                    "CFS"
                ],
                "summary": "Export the CFS dashboard",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "required": false,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "produces": [
                    "text/csv",
                    "application/pdf"
                ]
            }
        },
        "/api/v1/grades/cfs/snapshot": {
            "post": {
                "tags": [
                    "CFS"
                ],
                "summary": "Finalise the CFS",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CFSSnapshotRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/cfd/{id}/exam": {
            "patch": {
                "tags": [
                    "CFS"
                ],
                "summary": "Record a national exam grade",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ExamGradeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Locked or finalized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/grades/cfd/{id}/basico-exam": {
            "patch": {
                "tags": [
                    "CFS"
                ],
                "summary": "Record a Prova Final percentage",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BasicoExamGradeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Validation error",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Locked or finalized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "PastYearGradeRequest": {
            "type": "object",
            "properties": {
                "subject_id": {
                    "type": "string"
                },
                "year_level": {
                    "type": "string"
                },
                "academic_year": {
                    "type": "string"
                },
                "annual_grade": {
                    "type": "integer"
                }
            },
            "required": [
                "subject_id",
                "year_level",
                "academic_year"
            ]
        },
        "CreateGradeSettingsRequest": {
            "type": "object",
            "properties": {
                "academic_year": {
                    "type": "string"
                },
                "education_level": {
                    "type": "string",
                    "enum": [
                        "basico_1_ciclo",
                        "basico_2_ciclo",
                        "basico_3_ciclo",
                        "secundario"
                    ]
                },
                "graduation_cohort_year": {
                    "type": "integer"
                },
                "regime": {
                    "type": "string",
                    "enum": [
                        "trimestral",
                        "semestral"
                    ]
                },
                "period_weights": {
                    "type": "array",
                    "items": {
                        "type": "string",
                        "description": "decimal"
                    }
                },
                "subject_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "year_level": {
                    "type": "string"
                },
                "course": {
                    "type": "string"
                },
                "exam_candidate_subject_ids": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "past_year_grades": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/PastYearGradeRequest"
                    }
                }
            },
            "required": [
                "academic_year",
                "education_level",
                "period_weights",
                "subject_ids",
                "year_level"
            ]
        },
        "PastYearSubjectRequest": {
            "type": "object",
            "properties": {
                "subject_id": {
                    "type": "string"
                },
                "annual_grade": {
                    "type": "integer"
                }
            },
            "required": [
                "subject_id"
            ]
        },
        "PastYearSetupRequest": {
            "type": "object",
            "properties": {
                "academic_year": {
                    "type": "string"
                },
                "year_level": {
                    "type": "string"
                },
                "subjects": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/PastYearSubjectRequest"
                    }
                }
            },
            "required": [
                "academic_year",
                "year_level",
                "subjects"
            ]
        },
        "CreateEnrollmentRequest": {
            "type": "object",
            "properties": {
                "subject_id": {
                    "type": "string"
                },
                "academic_year": {
                    "type": "string"
                },
                "year_level": {
                    "type": "string"
                },
                "is_exam_candidate": {
                    "type": "boolean"
                }
            },
            "required": [
                "subject_id",
                "academic_year",
                "year_level"
            ]
        },
        "UpdateEnrollmentRequest": {
            "type": "object",
            "properties": {
                "is_active": {
                    "type": "boolean"
                },
                "is_exam_candidate": {
                    "type": "boolean"
                }
            }
        },
        "PeriodGradeRequest": {
            "type": "object",
            "properties": {
                "pauta_grade": {
                    "type": "integer"
                },
                "qualitative_grade": {
                    "type": "string"
                }
            }
        },
        "PeriodOverrideRequest": {
            "type": "object",
            "properties": {
                "pauta_grade": {
                    "type": "integer"
                },
                "override_reason": {
                    "type": "string"
                }
            },
            "required": [
                "pauta_grade",
                "override_reason"
            ]
        },
        "EvaluationElementRequest": {
            "type": "object",
            "properties": {
                "element_type": {
                    "type": "string"
                },
                "label": {
                    "type": "string"
                },
                "icon": {
                    "type": "string"
                },
                "weight_percentage": {
                    "type": "string",
                    "description": "decimal"
                },
                "raw_grade": {
                    "type": "string",
                    "description": "decimal"
                }
            },
            "required": [
                "element_type",
                "label"
            ]
        },
        "ReplaceElementsRequest": {
            "type": "object",
            "properties": {
                "elements": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/EvaluationElementRequest"
                    }
                }
            }
        },
        "ElementGradeRequest": {
            "type": "object",
            "properties": {
                "raw_grade": {
                    "type": "string",
                    "description": "decimal"
                }
            }
        },
        "UpdateAnnualGradeRequest": {
            "type": "object",
            "properties": {
                "subject_id": {
                    "type": "string"
                },
                "academic_year": {
                    "type": "string"
                },
                "annual_grade": {
                    "type": "integer"
                }
            },
            "required": [
                "subject_id",
                "academic_year",
                "annual_grade"
            ]
        },
        "ExamGradeRequest": {
            "type": "object",
            "properties": {
                "exam_grade_raw": {
                    "type": "integer"
                }
            },
            "required": [
                "exam_grade_raw"
            ]
        },
        "BasicoExamGradeRequest": {
            "type": "object",
            "properties": {
                "exam_percentage": {
                    "type": "integer"
                }
            },
            "required": [
                "exam_percentage"
            ]
        },
        "CFSSnapshotRequest": {
            "type": "object",
            "properties": {
                "academic_year": {
                    "type": "string"
                }
            },
            "required": [
                "academic_year"
            ]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
