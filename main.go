package main

import "github.com/varalys/asmscan/cmd/asmscan"

func main() { asmscan.Execute() }
