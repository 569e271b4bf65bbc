package main

import "github.com/iksnae/gujjar-gpt/cmd"

func main() {
	cmd.Execute()
}
