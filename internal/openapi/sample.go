package openapi

// Sample returns the example document served on /sample-spec. It is built
// fresh on every call so handlers can't mutate a shared value, and it always
// passes Validate, so the sample can be posted straight back to /generate.
func Sample() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       "Task Manager API",
			"version":     "1.0.0",
			"description": "A small task management service with CRUD operations.",
		},
		"paths": map[string]any{
			"/tasks": map[string]any{
				"get": map[string]any{
					"summary":     "List all tasks",
					"operationId": "listTasks",
					"responses": map[string]any{
						"200": map[string]any{
							"description": "A list of tasks",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{
										"type":  "array",
										"items": map[string]any{"$ref": "#/components/schemas/Task"},
									},
								},
							},
						},
					},
				},
				"post": map[string]any{
					"summary":     "Create a task",
					"operationId": "createTask",
					"requestBody": map[string]any{
						"required": true,
						"content": map[string]any{
							"application/json": map[string]any{
								"schema": map[string]any{"$ref": "#/components/schemas/NewTask"},
							},
						},
					},
					"responses": map[string]any{
						"201": map[string]any{"description": "Task created"},
						"400": map[string]any{"description": "Invalid task payload"},
					},
				},
			},
			"/tasks/{id}": map[string]any{
				"get": map[string]any{
					"summary":     "Fetch a task by id",
					"operationId": "getTask",
					"parameters": []any{
						map[string]any{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]any{"type": "string"},
						},
					},
					"responses": map[string]any{
						"200": map[string]any{"description": "The task"},
						"404": map[string]any{"description": "Task not found"},
					},
				},
				"delete": map[string]any{
					"summary":     "Delete a task",
					"operationId": "deleteTask",
					"parameters": []any{
						map[string]any{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]any{"type": "string"},
						},
					},
					"responses": map[string]any{
						"204": map[string]any{"description": "Task deleted"},
						"404": map[string]any{"description": "Task not found"},
					},
				},
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"Task": map[string]any{
					"type":     "object",
					"required": []any{"id", "title", "done"},
					"properties": map[string]any{
						"id":    map[string]any{"type": "string"},
						"title": map[string]any{"type": "string"},
						"done":  map[string]any{"type": "boolean"},
					},
				},
				"NewTask": map[string]any{
					"type":     "object",
					"required": []any{"title"},
					"properties": map[string]any{
						"title": map[string]any{"type": "string"},
						"done":  map[string]any{"type": "boolean"},
					},
				},
			},
		},
	}
}
