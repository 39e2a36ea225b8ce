package main

import (
	_ "time/tzdata"

	"github.com/vietddude/localguide/internal/cli"
)

func main() {
	cli.Execute()
}
