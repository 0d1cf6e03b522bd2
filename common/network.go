package common

import "math/big"

// CCTP testnet deployment used by the settlement flow.
const (
	USDCDecimals = 6

	BaseSepoliaDomain uint32 = 6
	PolygonAmoyDomain uint32 = 7

	// standard (no fee) transfer tier
	StandardMinFinality uint32 = 2000

	IrisSandboxURL = "https://iris-api-sandbox.circle.com"
	IrisMainnetURL = "https://iris-api.circle.com"

	TokenMessengerV2Testnet     = "0x8FE6B999Dc680CcFDD5Bf7EB0974218be2542DAA"
	MessageTransmitterV2Testnet = "0xE737e5cEBEEBa77EFE34D4aa090756590b1CE275"
	BaseSepoliaUSDC             = "0x036CbD53842c5426634e7929541eC2318f3dCF7e"
	PolygonAmoyUSDC             = "0x41E94Eb019C0762f9Bfcf9Fb1E58725BfB0e7582"

	BaseSepoliaRPC = "https://sepolia.base.org"
	PolygonAmoyRPC = "https://rpc-amoy.polygon.technology"
)

var (
	BaseSepoliaChainID = big.NewInt(84532)
	PolygonAmoyChainID = big.NewInt(80002)
)
