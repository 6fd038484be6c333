package hood

// Modern firmware GATT layout. All status characteristics are read-only, commands go
// to a single write characteristic, colors are read and written on their own slot.
const (
	ServiceUUID              = "2b8c0f72-2a5c-4d24-93b4-4a0b5e1f0a00"
	StatusCharacteristic     = "2b8c0f72-2a5c-4d24-93b4-4a0b5e1f0a01"
	BrightnessCharacteristic = "2b8c0f72-2a5c-4d24-93b4-4a0b5e1f0a02"
	ColorCharacteristic      = "2b8c0f72-2a5c-4d24-93b4-4a0b5e1f0a03"
	CommandCharacteristic    = "2b8c0f72-2a5c-4d24-93b4-4a0b5e1f0a04"
)

// Legacy firmware speaks over a UART-style service. Units built from 2018 on expose a
// second service with its own RX slot.
const (
	LegacyServiceUUID     = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	LegacyRXUUID          = "6e400002-b5a3-f393-e0a9-e50e24dcca9e"
	LegacyTXUUID          = "6e400003-b5a3-f393-e0a9-e50e24dcca9e"
	LegacyConfigUUID      = "6e400004-b5a3-f393-e0a9-e50e24dcca9e"
	Legacy2018ServiceUUID = "0000ffe0-0000-1000-8000-00805f9b34fb"
	Legacy2018RXUUID      = "0000ffe1-0000-1000-8000-00805f9b34fb"

	// LegacyNameMarker appears in the advertised name of every legacy unit.
	LegacyNameMarker = "HOOD_PER"

	// DefaultLegacyPIN is the factory PIN prefixed to every legacy command.
	DefaultLegacyPIN = "0000"
)
