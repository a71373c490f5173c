package main

import "github.com/izikbr/calorific2-app/cmd/calorific"

func main() {
	calorific.Execute()
}
