// Command titantest runs the training integration tests and inspects their
// learning-rate schedules and history.
package main

func main() {
	Execute()
}
