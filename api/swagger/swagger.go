package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Classtime API",
        "description": "Classroom membership and course content API",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Account registration and token flows"},
        {"name": "Users", "description": "Profiles, classrooms and invitations per user"},
        {"name": "Classrooms", "description": "Classroom lifecycle, rosters and exports"},
        {"name": "Membership", "description": "Invitation and join-request workflows"},
        {"name": "Posts", "description": "Course content inside classrooms"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation error"},
                    "409": {"description": "Email or username already in use"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate by email and password",
                "responses": {
                    "200": {"description": "Token pair issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate the refresh token session",
                "responses": {
                    "200": {"description": "Rotated token pair"},
                    "401": {"description": "Unknown, revoked or expired token"}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user profile",
                "responses": {
                    "200": {"description": "User info"},
                    "404": {"description": "User not found"}
                }
            }
        },
        "/users/me": {
            "put": {
                "tags": ["Users"],
                "summary": "Edit own profile",
                "responses": {
                    "200": {"description": "Updated user info"},
                    "409": {"description": "Username already in use"}
                }
            }
        },
        "/users/{id}/classrooms": {
            "get": {
                "tags": ["Users"],
                "summary": "List own classrooms",
                "responses": {
                    "200": {"description": "Classrooms"},
                    "403": {"description": "Not the caller's own listing"}
                }
            }
        },
        "/users/{id}/invitations": {
            "get": {
                "tags": ["Users"],
                "summary": "List own waiting invitations",
                "responses": {
                    "200": {"description": "Invitations"},
                    "403": {"description": "Not the caller's own listing"}
                }
            }
        },
        "/classrooms": {
            "post": {
                "tags": ["Classrooms"],
                "summary": "Create a classroom",
                "responses": {
                    "201": {"description": "Classroom created, caller is admin"}
                }
            }
        },
        "/classrooms/{id}": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Public classroom profile with membership flag",
                "responses": {
                    "200": {"description": "Classroom profile"},
                    "404": {"description": "Classroom not found"}
                }
            }
        },
        "/classrooms/{id}/members": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "List classroom members",
                "responses": {
                    "200": {"description": "Roster"},
                    "403": {"description": "Caller is not a member"}
                }
            }
        },
        "/classrooms/{id}/roster": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Export roster as CSV or PDF",
                "responses": {
                    "200": {"description": "Roster file"},
                    "403": {"description": "Caller is not an admin"}
                }
            }
        },
        "/classrooms/{id}/posts": {
            "get": {
                "tags": ["Posts"],
                "summary": "List classroom posts",
                "responses": {
                    "200": {"description": "Posts"},
                    "403": {"description": "Caller is not a member"}
                }
            }
        },
        "/invitations": {
            "post": {
                "tags": ["Membership"],
                "summary": "Invite a candidate",
                "responses": {
                    "200": {"description": "Waiting invitation created"},
                    "403": {"description": "Caller is not an admin"},
                    "409": {"description": "Already a member or already invited"}
                }
            }
        },
        "/invitations/respond": {
            "post": {
                "tags": ["Membership"],
                "summary": "Accept or refuse own invitation",
                "responses": {
                    "200": {"description": "Invitation resolved"},
                    "404": {"description": "No waiting invitation"},
                    "409": {"description": "Invitation already responded to"}
                }
            }
        },
        "/join-requests": {
            "post": {
                "tags": ["Membership"],
                "summary": "Request to join a classroom",
                "responses": {
                    "200": {"description": "Waiting join request created"},
                    "404": {"description": "Classroom not found"},
                    "409": {"description": "Already a member or already requested"}
                }
            }
        },
        "/join-requests/resolve": {
            "post": {
                "tags": ["Membership"],
                "summary": "Approve or deny a join request",
                "responses": {
                    "200": {"description": "Request resolved"},
                    "403": {"description": "Caller is not an admin"},
                    "409": {"description": "Request already resolved"}
                }
            }
        },
        "/posts": {
            "post": {
                "tags": ["Posts"],
                "summary": "Publish a post",
                "responses": {
                    "201": {"description": "Post created"},
                    "403": {"description": "Caller is not a member"}
                }
            }
        },
        "/posts/{id}": {
            "get": {
                "tags": ["Posts"],
                "summary": "Get a post",
                "responses": {
                    "200": {"description": "Post"},
                    "403": {"description": "Private post, caller is not a member"},
                    "404": {"description": "Post not found"}
                }
            },
            "delete": {
                "tags": ["Posts"],
                "summary": "Remove a post",
                "responses": {
                    "200": {"description": "Post removed"},
                    "403": {"description": "Caller is neither creator nor admin"}
                }
            }
        }
    },
    "definitions": {
        "ErrorBody": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "err": {"$ref": "#/definitions/ErrorBody"}
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
