package testutils

import (
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

// Test addresses used across packages.
const (
	TestModernAddress  = "AA:BB:CC:DD:EE:01"
	TestModernAddress2 = "AA:BB:CC:DD:EE:02"
	TestLegacyAddress  = "AA:BB:CC:DD:EE:10"

	// TestCompanyID is the manufacturer identifier fake advertisements carry.
	TestCompanyID uint16 = 0x1234
)

// NewTestLogger enables debug logs to track execution flow.
func NewTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

// TransportSuite gives each test a fresh FakeTransport and a debug logger.
//
//	type ClientSuite struct {
//	    testutils.TransportSuite
//	}
//
//	func (s *ClientSuite) SetupTest() {
//	    s.TransportSuite.SetupTest()
//	    s.Transport.WithValue(hood.StatusCharacteristic, status)
//	}
type TransportSuite struct {
	suite.Suite

	Logger    *logrus.Logger
	Transport *FakeTransport
}

func (s *TransportSuite) SetupTest() {
	s.Logger = NewTestLogger()
	s.Transport = NewFakeTransport()
}
