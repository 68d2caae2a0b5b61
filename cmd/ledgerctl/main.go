// Command ledgerctl inspects statement files and runs ledger maintenance
// against the configured storage.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("ledgerctl")
	}
}
