// Command turingviz runs, steps, renders and serves Turing machines.
package main

func main() {
	Execute()
}
