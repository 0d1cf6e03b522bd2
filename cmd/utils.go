package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	ENV_CONFIG_FILE_PATH = "ESCROW_CONFIG"
	ENV_DOTENV_FILE_PATH = ".env"
)

// fileExists checks if a file exists and is readable
func FileExists(filePath string) bool {
	file, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer file.Close()
	return true
}

// LoadConfig returns a viper that reads the process environment, seeded
// from dotenvPath when present and overlaid by the file named in
// ESCROW_CONFIG. Environment variables win over the config file.
func LoadConfig(dotenvPath string) (*viper.Viper, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	v := viper.New()
	v.AutomaticEnv()

	configFile := v.GetString(ENV_CONFIG_FILE_PATH)
	if configFile == "" {
		return v, nil
	}
	if !FileExists(configFile) {
		logger.WithField("file", configFile).Warn("configuration file not found, using environment only")
		return v, nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	logger.WithField("file", configFile).Info("configuration file loaded")
	return v, nil
}

// PrepareEscrowServerConfig reads configuration variables and returns an
// EscrowServerConfig.
func PrepareEscrowServerConfig(v *viper.Viper) *EscrowServerConfig {
	return &EscrowServerConfig{
		RpcUrl:                 v.GetString("RPC_URL"),
		DeployerPrivateKey:     v.GetString("DEPLOYER_PRIVATE_KEY"),
		RelayerPrivateKey:      v.GetString("AMOY_DEPLOYER_PRIVATE_KEY"),
		ExpectedChainId:        v.GetString("EXPECTED_CHAIN_ID"),
		EscrowArtifactPath:     v.GetString("ESCROW_ARTIFACT_PATH"),
		UsdcContractAddress:    v.GetString("USDC_AMOY_CONTRACT_ADDRESS"),
		MessageTransmitterAddr: v.GetString("MESSAGE_TRANSMITTER_ADDRESS"),
		DestinationDomain:      v.GetString("DESTINATION_DOMAIN"),

		SourceRpcUrl:          v.GetString("SOURCE_RPC_URL"),
		SourceChainId:         v.GetString("SOURCE_CHAIN_ID"),
		SourcePrivateKey:      v.GetString("SOURCE_PRIVATE_KEY"),
		SourceUsdcAddress:     v.GetString("SOURCE_USDC_ADDRESS"),
		TokenMessengerAddress: v.GetString("TOKEN_MESSENGER_ADDRESS"),
		SourceDomain:          v.GetString("SOURCE_DOMAIN"),

		IrisBaseUrl:                v.GetString("IRIS_BASE_URL"),
		AttestationMaxAttempts:     v.GetString("ATTESTATION_MAX_ATTEMPTS"),
		AttestationIntervalMs:      v.GetString("ATTESTATION_INTERVAL_MS"),
		AttestationRequestsPerSecs: v.GetString("ATTESTATION_REQUESTS_PER_SECOND"),

		DbFilePath: v.GetString("DB_FILE_PATH"),

		CircleApiKey:       v.GetString("CIRCLE_API_KEY"),
		CircleEntitySecret: v.GetString("CIRCLE_ENTITY_SECRET"),
		CircleBaseUrl:      v.GetString("CIRCLE_BASE_URL"),

		CdpApiKeyName:       v.GetString("CDP_API_KEY_NAME"),
		CdpApiKeyPrivateKey: v.GetString("CDP_API_KEY_PRIVATE_KEY"),

		HttpIp:   v.GetString("HTTP_IP"),
		HttpPort: v.GetString("HTTP_PORT"),
	}
}
