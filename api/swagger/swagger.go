// Package swagger holds the OpenAPI document served next to the Swagger UI.
package swagger

import _ "embed"

// Path is the route the document is served on.
const Path = "/openapi/users.swagger.json"

//go:embed users.swagger.json
var Spec []byte
