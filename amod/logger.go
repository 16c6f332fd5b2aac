package amod

import "github.com/sirupsen/logrus"

var log = logrus.WithField("module", "amod")
