// Command issuectl drives issuance workflows and token queries from a
// terminal, without the HTTP service.
package main

func main() {
	Execute()
}
