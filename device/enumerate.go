package device

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/vkngwrapper/toolkit/logging"
)

// Enumeration is the result of describing every physical device the driver
// reports. Devices holds the candidates that were fully described, in
// enumeration order; Failed holds one error per candidate that was not.
type Enumeration struct {
	Devices []PhysicalDevice
	Failed  []error
}

// Enumerate describes every physical device against surface. Only a failure
// to list the devices is returned as an error; a failure describing one
// candidate is recorded in Failed and the rest are still described.
func Enumerate(driver Driver, surface Surface) (Enumeration, error) {
	handles, err := driver.EnumeratePhysicalDevices()
	if err != nil {
		return Enumeration{}, errors.WithStack(&QueryError{Query: "enumerate physical devices", Err: err})
	}

	log := logging.Logger()
	var result Enumeration
	for index, handle := range handles {
		physicalDevice, err := NewPhysicalDevice(driver, surface, handle)
		if err != nil {
			log.WithError(err).WithField("index", index).Warn("skipping physical device")
			result.Failed = append(result.Failed, err)
			continue
		}

		log.WithFields(logrus.Fields{
			"index":  index,
			"device": physicalDevice.Name,
			"type":   physicalDevice.Type,
		}).Info("found physical device")
		result.Devices = append(result.Devices, physicalDevice)
	}

	return result, nil
}
