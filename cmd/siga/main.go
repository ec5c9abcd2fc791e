package main

import (
	"context"
	"fatec-api/cmd/siga/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
