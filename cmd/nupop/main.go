// cmd/nupop/main.go
package main

import (
	"nupop/internal/app"
	"nupop/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
