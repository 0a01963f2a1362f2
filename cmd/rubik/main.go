// Rubik's Cube state server - HTTP, websocket and MCP access to virtual cubes.
package main

import (
	"github.com/SeamusWaldron/rubik_server/internal/cli"
)

func main() {
	cli.Execute()
}
