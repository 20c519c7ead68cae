package proto

// Request command ids shared by both profiles.
const (
	CmdPing          byte = 0x01
	CmdSetDebugLevel byte = 0x02

	CmdWifiConnect     byte = 0x10
	CmdWifiConnectFast byte = 0x11
	CmdWifiDisconnect  byte = 0x12
	CmdWifiStatus      byte = 0x13

	CmdHTTPGet byte = 0x20
)

// Application-profile request ids. The 0x30 block overlaps the updater
// profile: the id on the wire selects a different operation depending on
// which partition the peer booted from.
const (
	CmdWifiScan byte = 0x14

	CmdRCSConnect    byte = 0x30
	CmdRCSDisconnect byte = 0x31

	CmdBLEStart   byte = 0x40
	CmdBLEStop    byte = 0x41
	CmdBLESendLog byte = 0x42
	CmdBLESetName byte = 0x43
)

// Updater-profile request ids.
const (
	CmdDownloadAndFlash  byte = 0x30
	CmdSetBootPartition  byte = 0x31
	CmdValidatePartition byte = 0x32
)

// Response and notification ids.
const (
	RspAck         byte = 0x80
	RspError       byte = 0x81
	RspPong        byte = 0x82
	NotifyDebug    byte = 0x83
	RspWifiStatus  byte = 0x90
	NotifyWifiConnected    byte = 0x91
	NotifyWifiFailed       byte = 0x92
	NotifyWifiDisconnected byte = 0x93
	NotifyWifiScanResult   byte = 0x94
	NotifyWifiScanDone     byte = 0x95
	RspHTTPData    byte = 0xA0
	RspPartitionValid   byte = 0xB0
	NotifyFlashProgress byte = 0xB1
	NotifyFlashComplete byte = 0xB2
	NotifyFlashFailed   byte = 0xB3
	NotifyRCSConnected    byte = 0xC0
	NotifyRCSDisconnected byte = 0xC1
	NotifyRCSData         byte = 0xC2
	RspBLEStatus          byte = 0xC3
	NotifyBLEClientEvent  byte = 0xC4
)

// Error codes carried by RspError.
const (
	ErrorInvalidParameters    byte = 0x01
	ErrorNotConnectedToWifi   byte = 0x02
	ErrorHTTPConnectionFailed byte = 0x03
	ErrorDownloadFailed       byte = 0x04
	ErrorFlashFailed          byte = 0x05
	ErrorInvalidPartition     byte = 0x06
	ErrorOutOfMemory          byte = 0x07
	ErrorTimeout              byte = 0x08
	ErrorUnknown              byte = 0xFE
)

// Partition identifiers reported by RspPong and RspPartitionValid and
// accepted by CmdSetBootPartition.
const (
	PartitionFactory byte = 0x00
	PartitionOTA0    byte = 0x01
)

// Connection states carried by RspWifiStatus.
const (
	WifiStateDisconnected byte = 0x00
	WifiStateConnected    byte = 0x01
	WifiStateConnecting   byte = 0x02
)

// Failure reasons carried by NotifyWifiFailed.
const (
	WifiFailNetworkNotFound byte = 0x01
	WifiFailWrongPassword   byte = 0x02
	WifiFailTimeout         byte = 0x03
	WifiFailAPRejected      byte = 0x04
	WifiFailUnknown         byte = 0xFF
)

// Reasons carried by NotifyWifiDisconnected.
const (
	WifiDisconnectReasonUser byte = 0x00
	WifiDisconnectReasonLost byte = 0x01
	WifiDisconnectReasonAPGone byte = 0x02
)

// Options accepted by CmdWifiScan.
const (
	WifiScanOptionNone       byte = 0x00
	WifiScanOptionShowHidden byte = 0x01
	WifiScanOptionActiveScan byte = 0x02
)

// Encryption types carried by NotifyWifiScanResult.
const (
	WifiEncryptionOpen       byte = 0x00
	WifiEncryptionWEP        byte = 0x01
	WifiEncryptionWPAPSK     byte = 0x02
	WifiEncryptionWPA2PSK    byte = 0x03
	WifiEncryptionWPAWPA2PSK byte = 0x04
)

// Error codes carried by NotifyFlashFailed.
const (
	FlashErrorWriteError           byte = 0x01
	FlashErrorVerificationFailed   byte = 0x02
	FlashErrorInvalidFirmwareImage byte = 0x03
	FlashErrorOutOfSpace           byte = 0x04
	FlashErrorConnectionLost       byte = 0x05
	FlashErrorServerError          byte = 0x06
	FlashErrorUnknown              byte = 0xFF
)

// Verbosity levels accepted by CmdSetDebugLevel.
const (
	DebugLevelOff     byte = 0x00
	DebugLevelError   byte = 0x01
	DebugLevelWarning byte = 0x02
	DebugLevelInfo    byte = 0x03
	DebugLevelVerbose byte = 0x04
)

// BLE service states carried by RspBLEStatus.
const (
	BLEStateOff         byte = 0x00
	BLEStateAdvertising byte = 0x01
	BLEStateConnected   byte = 0x02
)

// Event types carried by NotifyBLEClientEvent.
const (
	BLEEventClientConnected    byte = 0x01
	BLEEventClientDisconnected byte = 0x02
)

// IsResponse reports whether id is in the response/notification half of the
// command space.
func IsResponse(id byte) bool {
	return id&0x80 != 0
}
