// Command rendezvousctl is the operator CLI for a running rendezvousd.
package main

import "github.com/rendezvous-relay/rendezvous/cmd/rendezvousctl/commands"

func main() {
	commands.Execute()
}
