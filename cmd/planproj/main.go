// Command planproj projects curves onto planes and converts points between
// coordinate systems.
package main

func main() {
	Execute()
}
