package main

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
)

const validationLayer = "VK_LAYER_KHRONOS_validation"

func (p *DeviceSurvey) debugMessengerOptions() ext_debug_utils.DebugUtilsMessengerCreateInfo {
	return ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityError | ext_debug_utils.SeverityWarning,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback: func(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
			return logValidationMessage(p.log, msgType, severity, data)
		},
	}
}

// enableValidation adds the validation layer and debug utils extension to the
// instance and chains a messenger so instance creation itself is covered.
func (p *DeviceSurvey) enableValidation(layers []string, extensions []string) ([]string, []string, error) {
	available, _, err := p.globalDriver.AvailableLayers()
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	if _, hasValidation := available[validationLayer]; !hasValidation {
		return nil, nil, errors.New("cannot add khronos validation layer: install the LunarG Vulkan SDK")
	}

	return append(layers, validationLayer), append(extensions, ext_debug_utils.ExtensionName), nil
}

func (p *DeviceSurvey) createDebugMessenger() error {
	p.debugExtension = ext_debug_utils.CreateExtensionDriverFromCoreDriver(p.instanceDriver)
	if p.debugExtension == nil {
		return errors.New("VK_EXT_debug_utils is not active on the instance")
	}

	var err error
	p.debugMessenger, _, err = p.debugExtension.CreateDebugUtilsMessenger(nil, p.debugMessengerOptions())
	if err != nil {
		return errors.Wrap(err, "create debug messenger")
	}

	return nil
}

// logValidationMessage forwards one debug utils message at the logrus level
// matching its severity. It never asks the driver to abort the call.
func logValidationMessage(log logrus.FieldLogger, msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	entry := log.WithFields(logrus.Fields{
		"type":      msgType.String(),
		"messageID": data.MessageIDName,
	})

	switch {
	case severity&ext_debug_utils.SeverityError != 0:
		entry.Error(data.Message)
	case severity&ext_debug_utils.SeverityWarning != 0:
		entry.Warn(data.Message)
	case severity&ext_debug_utils.SeverityInfo != 0:
		entry.Info(data.Message)
	default:
		entry.Debug(data.Message)
	}

	return false
}
