// Command evalctl administers the evaluation database from the shell.
package main

func main() {
	Execute()
}
