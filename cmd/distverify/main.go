// Command distverify verifies a built Python distribution against
// its expectation matrix and dispatches the platform build driver.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(NewApp().Execute(context.Background(), os.Args[1:]))
}
