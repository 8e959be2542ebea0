package main

import (
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	Debug = log.New(ioutil.Discard, "", 0)
	Info  = log.New(ioutil.Discard, "", 0)
	Error = log.New(ioutil.Discard, "", 0)
)

// levelWriter forwards each log.Logger line to logrus at a fixed level.
type levelWriter struct {
	logger *logrus.Logger
	level  logrus.Level
}

func (w levelWriter) Write(p []byte) (int, error) {
	w.logger.Log(w.level, strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func logInit(verbose bool) {

	backend := logrus.New()
	backend.SetOutput(os.Stdout)
	backend.SetFormatter(&logrus.JSONFormatter{})
	backend.SetLevel(logrus.InfoLevel)
	if verbose {
		backend.SetLevel(logrus.DebugLevel)
	}

	Debug = log.New(levelWriter{backend, logrus.DebugLevel}, "", 0)
	Info = log.New(levelWriter{backend, logrus.InfoLevel}, "", 0)
	Error = log.New(levelWriter{backend, logrus.ErrorLevel}, "", 0)

	// no condition here, as you'll only see the message if
	// Verbose logging really is enabled!
	Debug.Printf("Verbose logging enabled")

}
