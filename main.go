package main

import "github.com/mealpoint/possync/cmd"

func main() {
	cmd.Execute()
}
