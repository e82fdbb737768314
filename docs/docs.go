// Package docs holds the Swagger 2.0 document served under /swagger. It is
// maintained by hand alongside the swag annotations on the handlers; keep the
// two in sync when routes change.
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
        "/auth/signup": {
            "post": {
                "description": "Create a user with a credit account holding the signup grant",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Signup request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Signup successful", "schema": {"$ref": "#/definitions/services.AuthResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "409": {"description": "Email already exists", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Authenticate user with email and password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login user",
                "parameters": [
                    {"description": "Login request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Login successful", "schema": {"$ref": "#/definitions/services.AuthResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "description": "Logout user and blacklist token",
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout user",
                "responses": {"200": {"description": "Logout successful"}}
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get current user",
                "responses": {
                    "200": {"description": "User details", "schema": {"$ref": "#/definitions/models.User"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/products": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "parameters": [{"type": "integer", "description": "Maximum number of products", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Product"}}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create product",
                "parameters": [
                    {"description": "Product", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ProductInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Product"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/products/{productId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get product",
                "parameters": [{"type": "string", "description": "Product ID", "name": "productId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Update product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "productId", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ProductUpdate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Product"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["products"],
                "summary": "Delete product",
                "parameters": [{"type": "string", "description": "Product ID", "name": "productId", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/products/{productId}/generate/{type}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Generate copy for a product",
                "parameters": [
                    {"type": "string", "description": "Product ID", "name": "productId", "in": "path", "required": true},
                    {"enum": ["title", "description", "bullet", "tags", "full"], "type": "string", "description": "Generation type", "name": "type", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.ProductGeneration"}},
                    "403": {"description": "Insufficient credits", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/generate/{type}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Reserve the type's credit cost, generate copy and charge only on success. Costs: title 1, description 2, bullet 1, tags 1, full 5.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["generate"],
                "summary": "Generate listing copy",
                "parameters": [
                    {"enum": ["title", "description", "bullet", "tags", "full"], "type": "string", "description": "Generation type", "name": "type", "in": "path", "required": true},
                    {"description": "Product facts", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.GenerationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.GenerationResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "403": {"description": "Insufficient credits", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/credits": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["credits"],
                "summary": "Get credits",
                "parameters": [{"type": "integer", "description": "Number of transactions", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.CreditSummary"}}}
            }
        },
        "/credits/packages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["credits"],
                "summary": "List credit packages",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.CreditPackage"}}}}
            }
        },
        "/credits/purchase": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["credits"],
                "summary": "Purchase credits",
                "parameters": [
                    {"description": "Package", "name": "request", "in": "body", "required": true, "schema": {"type": "object", "properties": {"packageId": {"type": "string", "example": "basic"}}}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Unpaid purchases are disabled", "schema": {"$ref": "#/definitions/services.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/services.ErrorResponse"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Dashboard",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.DashboardStats"}}}
            }
        }
    },
    "definitions": {
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.Product": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "productName": {"type": "string"},
                "category": {"type": "string"},
                "brand": {"type": "string"},
                "price": {"type": "integer"},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "enum": ["draft", "published"]},
                "generatedTitle": {"type": "string"},
                "generatedAlternatives": {"type": "array", "items": {"type": "string"}},
                "generatedDescription": {"type": "string"},
                "generatedBulletSpecs": {"type": "array", "items": {"type": "string"}},
                "generatedTags": {"type": "array", "items": {"type": "string"}},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.ProductInput": {
            "type": "object",
            "required": ["productName"],
            "properties": {
                "productName": {"type": "string", "maxLength": 200, "example": "무선 블루투스 이어폰"},
                "category": {"type": "string", "maxLength": 50, "example": "디지털가전"},
                "brand": {"type": "string", "maxLength": 100},
                "price": {"type": "integer", "minimum": 0},
                "keywords": {"type": "array", "maxItems": 20, "items": {"type": "string"}}
            }
        },
        "models.ProductUpdate": {
            "type": "object",
            "properties": {
                "productName": {"type": "string"},
                "category": {"type": "string"},
                "brand": {"type": "string"},
                "price": {"type": "integer"},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "enum": ["draft", "published"]},
                "generatedTitle": {"type": "string"},
                "generatedAlternatives": {"type": "array", "items": {"type": "string"}},
                "generatedDescription": {"type": "string"},
                "generatedBulletSpecs": {"type": "array", "items": {"type": "string"}},
                "generatedTags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.GenerationRequest": {
            "type": "object",
            "required": ["productName"],
            "properties": {
                "productName": {"type": "string", "maxLength": 200, "example": "무선 블루투스 이어폰"},
                "category": {"type": "string", "maxLength": 50},
                "brand": {"type": "string", "maxLength": 100},
                "price": {"type": "integer", "minimum": 0},
                "keywords": {"type": "array", "maxItems": 20, "items": {"type": "string"}},
                "tone": {"type": "string", "enum": ["professional", "friendly", "expert"]}
            }
        },
        "models.GenerationResult": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "alternatives": {"type": "array", "items": {"type": "string"}},
                "description": {"type": "string"},
                "bulletSpecs": {"type": "array", "items": {"type": "string"}},
                "tags": {"type": "array", "items": {"type": "string"}},
                "creditsUsed": {"type": "integer"}
            }
        },
        "models.CreditPackage": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "credits": {"type": "integer"},
                "priceKrw": {"type": "integer"},
                "isActive": {"type": "boolean"}
            }
        },
        "models.CreditTransaction": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "amount": {"type": "integer"},
                "type": {"type": "string", "enum": ["purchase", "usage", "bonus", "refund"]},
                "description": {"type": "string"},
                "reservationId": {"type": "string"},
                "createdAt": {"type": "string"}
            }
        },
        "services.SignupRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "seller@example.com"},
                "password": {"type": "string", "minLength": 8, "example": "password123"},
                "fullName": {"type": "string"}
            }
        },
        "services.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "seller@example.com"},
                "password": {"type": "string", "example": "password123"}
            }
        },
        "services.AuthResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/models.User"},
                "credits": {"type": "integer"}
            }
        },
        "services.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "services.ProductGeneration": {
            "type": "object",
            "properties": {
                "result": {"$ref": "#/definitions/models.GenerationResult"},
                "product": {"$ref": "#/definitions/models.Product"},
                "warning": {"type": "string"}
            }
        },
        "services.CreditSummary": {
            "type": "object",
            "properties": {
                "balance": {"type": "integer"},
                "lifetimeUsage": {"type": "integer"},
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/models.CreditTransaction"}}
            }
        },
        "services.DashboardStats": {
            "type": "object",
            "properties": {
                "balance": {"type": "integer"},
                "lifetimeUsage": {"type": "integer"},
                "productCount": {"type": "integer"},
                "recentProducts": {"type": "array", "items": {"$ref": "#/definitions/models.Product"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "SmartStore Listing Generator API",
	Description:      "Credit-gated generation of Naver SmartStore product listing copy",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
