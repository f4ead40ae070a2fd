package logger

import (
	"log"
	"os"
)

// Init configures the standard logger for all services.
func Init() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[storefront] ")
}
