package config

// AccountsKind tags the shape an accounts setting was written in.
type AccountsKind int

const (
	AccountsUnset AccountsKind = iota
	SinglePrivateKey
	PrivateKeyList
	Mnemonic
)

func (k AccountsKind) String() string {
	switch k {
	case SinglePrivateKey:
		return "private key"
	case PrivateKeyList:
		return "private key list"
	case Mnemonic:
		return "mnemonic"
	default:
		return "unset"
	}
}

// DefaultDerivationPath is the BIP-44 Ethereum path prefix; the account
// index is appended.
const DefaultDerivationPath = "m/44'/60'/0'/0/"

// Accounts is the resolved accounts setting. Exactly the field matching Kind
// is populated.
type Accounts struct {
	Kind        AccountsKind
	PrivateKeys []string
	Mnemonic    *MnemonicAccounts
}

// MnemonicAccounts derives Count accounts from a BIP-39 phrase starting at
// InitialIndex under Path.
type MnemonicAccounts struct {
	Phrase       string
	Path         string
	InitialIndex uint32
	Count        int
	Passphrase   string
}

func NewSinglePrivateKey(key string) Accounts {
	return Accounts{Kind: SinglePrivateKey, PrivateKeys: []string{key}}
}

func NewPrivateKeyList(keys []string) Accounts {
	return Accounts{Kind: PrivateKeyList, PrivateKeys: keys}
}

func NewMnemonic(m MnemonicAccounts) Accounts {
	if m.Path == "" {
		m.Path = DefaultDerivationPath
	}
	if m.Count <= 0 {
		m.Count = 1
	}
	return Accounts{Kind: Mnemonic, Mnemonic: &m}
}
