// Package docs 控制接口的 Swagger 文档
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
		"/api/v1/state": {
			"get": {
				"tags": [
					"设备"
				],
				"summary": "查询设备状态",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				}
			}
		},
		"/api/v1/records": {
			"get": {
				"tags": [
					"记录"
				],
				"summary": "查询运动记录",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "string",
						"description": "设备地址",
						"name": "device",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "数量上限(默认100)",
						"name": "limit",
						"in": "query"
					}
				]
			}
		},
		"/api/v1/records/sync": {
			"post": {
				"tags": [
					"记录"
				],
				"summary": "同步运动记录",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "integer",
						"description": "条数(0=全部)",
						"name": "count",
						"in": "query"
					}
				]
			}
		},
		"/api/v1/stream": {
			"get": {
				"tags": [
					"设备"
				],
				"summary": "订阅设备状态",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				}
			}
		},
		"/api/v1/connect": {
			"post": {
				"tags": [
					"连接"
				],
				"summary": "连接设备",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "boolean",
						"description": "是否等待连接完成",
						"name": "wait",
						"in": "query"
					}
				]
			}
		},
		"/api/v1/connect-any": {
			"post": {
				"tags": [
					"连接"
				],
				"summary": "连接任意设备",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"parameters": [
					{
						"type": "boolean",
						"description": "是否等待连接完成",
						"name": "wait",
						"in": "query"
					}
				]
			}
		},
		"/api/v1/disconnect": {
			"post": {
				"tags": [
					"连接"
				],
				"summary": "断开设备",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				}
			}
		},
		"/api/v1/reconnect": {
			"post": {
				"tags": [
					"连接"
				],
				"summary": "持续重连",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				}
			}
		},
		"/api/v1/reconnect/cancel": {
			"post": {
				"tags": [
					"连接"
				],
				"summary": "取消重连",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				}
			}
		},
		"/api/v1/auto-reconnect": {
			"put": {
				"tags": [
					"连接"
				],
				"summary": "设置自动重连",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "开关",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.toggleRequest"
						}
					}
				]
			}
		},
		"/api/v1/speed": {
			"post": {
				"tags": [
					"控制"
				],
				"summary": "设置速度",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "速度(0.1 km/h)",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.speedRequest"
						}
					}
				]
			}
		},
		"/api/v1/mode": {
			"post": {
				"tags": [
					"控制"
				],
				"summary": "切换模式",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "模式",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.modeRequest"
						}
					}
				]
			}
		},
		"/api/v1/start": {
			"post": {
				"tags": [
					"控制"
				],
				"summary": "启动",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				}
			}
		},
		"/api/v1/stop": {
			"post": {
				"tags": [
					"控制"
				],
				"summary": "停止",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				}
			}
		},
		"/api/v1/start-speed": {
			"put": {
				"tags": [
					"参数"
				],
				"summary": "设置启动速度",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "速度",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.speedRequest"
						}
					}
				]
			}
		},
		"/api/v1/max-speed": {
			"put": {
				"tags": [
					"参数"
				],
				"summary": "设置最高速度",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "速度",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.speedRequest"
						}
					}
				]
			}
		},
		"/api/v1/sensitivity": {
			"put": {
				"tags": [
					"参数"
				],
				"summary": "设置灵敏度",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "灵敏度",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.sensitivityRequest"
						}
					}
				]
			}
		},
		"/api/v1/unit": {
			"put": {
				"tags": [
					"参数"
				],
				"summary": "设置单位",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "单位",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.unitRequest"
						}
					}
				]
			}
		},
		"/api/v1/auto-start": {
			"put": {
				"tags": [
					"参数"
				],
				"summary": "设置自动启动",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "开关",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.toggleRequest"
						}
					}
				]
			}
		},
		"/api/v1/lock": {
			"put": {
				"tags": [
					"参数"
				],
				"summary": "设置童锁",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "开关",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.toggleRequest"
						}
					}
				]
			}
		},
		"/api/v1/calibration": {
			"put": {
				"tags": [
					"参数"
				],
				"summary": "设置校准模式",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "开关",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.toggleRequest"
						}
					}
				]
			}
		},
		"/api/v1/display": {
			"put": {
				"tags": [
					"参数"
				],
				"summary": "设置显示项",
				"produces": [
					"application/json"
				],
				"security": [
					{
						"ApiKeyAuth": []
					}
				],
				"responses": {
					"200": {
						"description": "成功",
						"schema": {
							"$ref": "#/definitions/api.StandardResponse"
						}
					}
				},
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "显示项位组合",
						"name": "request",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/api.displayRequest"
						}
					}
				]
			}
		}
	},
	"definitions": {
		"api.StandardResponse": {
			"type": "object",
			"properties": {
				"code": {
					"type": "integer"
				},
				"message": {
					"type": "string"
				},
				"data": {},
				"request_id": {
					"type": "string"
				},
				"timestamp": {
					"type": "integer"
				}
			}
		},
		"api.toggleRequest": {
			"type": "object",
			"required": [
				"enabled"
			],
			"properties": {
				"enabled": {
					"type": "boolean"
				}
			}
		},
		"api.speedRequest": {
			"type": "object",
			"required": [
				"speed"
			],
			"properties": {
				"speed": {
					"type": "integer",
					"maximum": 255,
					"minimum": 0
				}
			}
		},
		"api.modeRequest": {
			"type": "object",
			"required": [
				"mode"
			],
			"properties": {
				"mode": {
					"type": "string",
					"enum": [
						"auto",
						"manual",
						"sleep"
					]
				}
			}
		},
		"api.sensitivityRequest": {
			"type": "object",
			"required": [
				"sensitivity"
			],
			"properties": {
				"sensitivity": {
					"type": "string",
					"enum": [
						"high",
						"medium",
						"low"
					]
				}
			}
		},
		"api.unitRequest": {
			"type": "object",
			"required": [
				"unit"
			],
			"properties": {
				"unit": {
					"type": "string",
					"enum": [
						"metric",
						"imperial"
					]
				}
			}
		},
		"api.displayRequest": {
			"type": "object",
			"required": [
				"flags"
			],
			"properties": {
				"flags": {
					"type": "integer",
					"maximum": 31,
					"minimum": 0
				}
			}
		}
	},
	"securityDefinitions": {
		"ApiKeyAuth": {
			"type": "apiKey",
			"name": "X-API-Key",
			"in": "header"
		}
	}
}`

// SwaggerInfo 文档元信息
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "WalkingPad Gateway API",
	Description:      "WalkingPad 跑步机蓝牙网关控制接口",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
