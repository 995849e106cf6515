// Package docs holds the OpenAPI document served at /swagger/doc.json.
// Keep it in sync with the godoc annotations on the handlers.
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
        "/api/chat": {
            "post": {
                "description": "Streams chat tokens multiplexed with web search, image, video and speech generation markers.\nFrames are newline-delimited ` + "`" + `\u003ctag\u003e:\u003cjson\u003e` + "`" + `: 0 carries text or a marker, 3 an error, d the finish payload.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "text/event-stream"
                ],
                "tags": [
                    "chat"
                ],
                "summary": "Stream a chat turn",
                "parameters": [
                    {
                        "description": "Chat request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/models.ChatRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Frame stream",
                        "schema": {
                            "type": "string"
                        }
                    },
                    "400": {
                        "description": "Unsupported model",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/healthz": {
            "get": {
                "description": "Reports served chat models and which generation capabilities have credentials.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Service health",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.HealthResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "capabilities": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "boolean"
                    }
                },
                "models": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "status": {
                    "type": "string",
                    "example": "ok"
                }
            }
        },
        "models.ChatRequest": {
            "type": "object",
            "properties": {
                "fileMimeType": {
                    "type": "string",
                    "example": "image/png"
                },
                "fileUri": {
                    "type": "string"
                },
                "imageSettings": {
                    "$ref": "#/definitions/models.ImageSettings"
                },
                "messages": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.Message"
                    }
                },
                "model": {
                    "type": "string",
                    "example": "gemini-2.0-flash"
                },
                "multipleFiles": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/models.FileRef"
                    }
                }
            }
        },
        "models.FileRef": {
            "type": "object",
            "properties": {
                "mimeType": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "uri": {
                    "type": "string"
                }
            }
        },
        "models.ImageSettings": {
            "type": "object",
            "properties": {
                "model": {
                    "type": "string"
                },
                "quality": {
                    "type": "string"
                },
                "size": {
                    "type": "string"
                },
                "style": {
                    "type": "string"
                }
            }
        },
        "models.Message": {
            "type": "object",
            "properties": {
                "content": {
                    "type": "string"
                },
                "role": {
                    "type": "string",
                    "example": "user"
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
	Title:            "Chat Gateway API",
	Description:      "Streaming chat gateway that multiplexes chat tokens with search, image, video and speech generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
