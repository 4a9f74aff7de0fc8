package pairing

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/muka/go-bluetooth/api"
	"github.com/muka/go-bluetooth/linux/btmgmt"
	"github.com/muka/go-bluetooth/service"
)

const (
	// Unique UUID suffix for the provisioning service
	uuidSuffix = "-4c2a-4b1d-9e0b-6f0a3d2c7e51"

	// Prefix of the provisioning service UUID
	wifiServiceUuidPrefix = "F100"

	// Where to expose the application
	objectName = "land.lightning"
	objectPath = "/wifid/pairing/service"

	defaultName = "wifid"

	wifiServiceUuid           = wifiServiceUuidPrefix + "0000" + uuidSuffix
	networkAvailabilityStatus = wifiServiceUuidPrefix + "F101" + uuidSuffix
	ipAddress                 = wifiServiceUuidPrefix + "F102" + uuidSuffix
	wifiScanList              = wifiServiceUuidPrefix + "F103" + uuidSuffix
	wifiSsidString            = wifiServiceUuidPrefix + "F104" + uuidSuffix
	wifiPskString             = wifiServiceUuidPrefix + "F105" + uuidSuffix
	wifiConnectSignal         = wifiServiceUuidPrefix + "F106" + uuidSuffix
)

type Controller struct {
	*characteristics
	adapterId string
	app       *service.Application
}

func NewController(config *Config) (*Controller, error) {
	controller := &Controller{
		characteristics: &characteristics{
			daemon: config.Daemon,
		},
		adapterId: config.AdapterId,
	}

	if config.Logger != nil {
		controller.log = config.Logger
	} else {
		controller.log = noopLogger{}
	}

	name := config.Name
	if name == "" {
		name = defaultName
	}

	var err error

	app := GattApp(objectName, objectPath, name)
	service := app.Service(Primary, wifiServiceUuid, Advertised)

	service.DeviceNameCharacteristic(name).
		UserDescriptionDescriptor("Device Name").
		PresentationDescriptor()
	service.ManufacturerNameCharacteristic("The Lightning Land").
		UserDescriptionDescriptor("Manufacturer Name").
		PresentationDescriptor()
	service.Characteristic(networkAvailabilityStatus, controller.readNetworkAvailabilityStatus, nil).
		UserDescriptionDescriptor("Network Availability Status")
	service.Characteristic(ipAddress, controller.readIpAddress, nil).
		UserDescriptionDescriptor("IP Address")
	service.Characteristic(wifiScanList, controller.readWifiScanList, nil).
		UserDescriptionDescriptor("Wi-Fi Scan List")
	service.Characteristic(wifiSsidString, controller.readWifiSsidString, controller.writeWifiSsidString).
		UserDescriptionDescriptor("Wi-Fi SSID")
	service.Characteristic(wifiPskString, nil, controller.writeWifiPskString).
		UserDescriptionDescriptor("Wi-Fi PSK")
	service.Characteristic(wifiConnectSignal, nil, controller.writeWifiConnectSignal).
		UserDescriptionDescriptor("Wi-Fi Connect Signal")

	controller.app, err = app.Run()
	if err != nil {
		return nil, errors.Errorf("Could not start app: %v", err)
	}

	return controller, nil
}

func (c *Controller) Start() error {
	mgmt := btmgmt.NewBtMgmt(c.adapterId)
	err := mgmt.Reset()
	if err != nil {
		return errors.Errorf("Reset %s: %v", c.adapterId, err)
	}

	// Sleep to give the device some time after the reset
	time.Sleep(time.Millisecond * 500)

	gattManager, err := api.GetGattManager(c.adapterId)
	if err != nil {
		return errors.Errorf("Get gatt manager failed: %v", err)
	}

	err = gattManager.RegisterApplication(c.app.Path(), map[string]interface{}{})
	if err != nil {
		return errors.Errorf("Register failed: %v", err)
	}

	err = c.app.StartAdvertising(c.adapterId)
	if err != nil {
		return errors.Errorf("Failed to advertise: %v", err)
	}

	c.log.Infof("Advertising on %v", c.adapterId)

	return nil
}

func (c *Controller) Stop() error {
	err := c.app.StopAdvertising()
	if err != nil {
		return errors.Errorf("Could not stop advertising: %v", err)
	}

	gattManager, err := api.GetGattManager(c.adapterId)
	if err != nil {
		return errors.Errorf("Get gatt manager failed: %v", err)
	}

	err = gattManager.UnregisterApplication(c.app.Path())
	if err != nil {
		return errors.Errorf("Unregister failed: %v", err)
	}

	return nil
}
