package main

import "github.com/ValentinKolb/dGPIO/cmd"

func main() {
	cmd.Execute()
}
