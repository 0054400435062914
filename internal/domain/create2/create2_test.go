package create2

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/anchor/internal/domain"
	"github.com/trebuchet-org/anchor/internal/domain/bindings"
)

func saltFromHex(t *testing.T, s string) domain.Salt {
	t.Helper()
	salt, err := ParseSalt(s)
	require.NoError(t, err)
	return salt
}

func TestEVMDerive(t *testing.T) {
	tests := []struct {
		name     string
		factory  string
		salt     string
		initCode string
		want     string
	}{
		{
			name:     "zero factory and salt",
			factory:  "0x0000000000000000000000000000000000000000",
			salt:     "0x0000000000000000000000000000000000000000000000000000000000000000",
			initCode: "0x00",
			want:     "0x4D1A2e2bB4F88F0250f26Ffff098B0b30B26BF38",
		},
		{
			name:     "deadbeef factory",
			factory:  "0xdeadbeef00000000000000000000000000000000",
			salt:     "0x0000000000000000000000000000000000000000000000000000000000000000",
			initCode: "0x00",
			want:     "0xB928f69Bb1D91Cd65274e3c79d8986362984fDA3",
		},
		{
			name:     "cafebabe salt",
			factory:  "0x00000000000000000000000000000000deadbeef",
			salt:     "0x00000000000000000000000000000000000000000000000000000000cafebabe",
			initCode: "0xdeadbeef",
			want:     "0x60f3f640a8508fC6a86d45DF051962668E1e8AC7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Derive(EVM{}, common.HexToAddress(tt.factory), common.FromHex(tt.initCode), saltFromHex(t, tt.salt), nil)
			require.NoError(t, err)
			assert.Equal(t, common.HexToAddress(tt.want), got)
		})
	}
}

func TestEVMDeriveMatchesGeth(t *testing.T) {
	factory := common.HexToAddress("0x4e59b44847b379578588920cA78FbF26c0B4956C")
	initCode := common.FromHex("0x6080604052348015600f57600080fd5b50603f80601d6000396000f3fe")
	input := common.FromHex("0x000000000000000000000000000000000000000000000000000000000000002a")
	salt := saltFromHex(t, "0x0000000000000000000000000000000000000000000000000000000000000001")

	got, err := Derive(EVM{}, factory, initCode, salt, input)
	require.NoError(t, err)

	want := crypto.CreateAddress2(factory, salt, crypto.Keccak256(initCode, input))
	assert.Equal(t, want, got)

	again, err := Derive(EVM{}, factory, initCode, salt, input)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestEVMRejectsEmptyBytecode(t *testing.T) {
	_, err := Derive(EVM{}, common.Address{}, nil, domain.ZeroSalt, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidEncoding)
}

func TestEVMDeployCall(t *testing.T) {
	salt := saltFromHex(t, "0x00000000000000000000000000000000000000000000000000000000cafebabe")
	data, deps, err := EVM{}.DeployCall(salt, common.Hash{}, []byte{0x60, 0x00}, []byte{0xaa})
	require.NoError(t, err)
	assert.Nil(t, deps)
	assert.Len(t, data, 35)
	assert.Equal(t, salt[:], data[:32])
	assert.Equal(t, []byte{0x60, 0x00, 0xaa}, data[32:])
}

func TestZkSyncBytecodeHash(t *testing.T) {
	t.Run("single word", func(t *testing.T) {
		h, err := ZkSync{}.BytecodeHash(make([]byte, 32), nil)
		require.NoError(t, err)
		assert.Equal(t, common.HexToHash("0x01000001f862bd776c8fc18b8e9f8e20089714856ee233b3902a591d0d5f2925"), h)
	})

	t.Run("layout", func(t *testing.T) {
		code := make([]byte, 3*32)
		for i := range code {
			code[i] = byte(i)
		}
		h, err := ZkSync{}.BytecodeHash(code, nil)
		require.NoError(t, err)
		sum := sha256.Sum256(code)
		assert.Equal(t, byte(0x01), h[0])
		assert.Equal(t, byte(0x00), h[1])
		assert.Equal(t, []byte{0x00, 0x03}, h[2:4])
		assert.Equal(t, sum[4:], h[4:])
	})

	invalid := map[string][]byte{
		"empty":          nil,
		"not word sized": make([]byte, 33),
		"even words":     make([]byte, 64),
		"too long":       make([]byte, 32*(1<<16+1)),
	}
	for name, code := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := ZkSync{}.BytecodeHash(code, nil)
			assert.True(t, errors.Is(err, domain.ErrInvalidEncoding))
		})
	}
}

func TestZkSyncAddress(t *testing.T) {
	factory := common.HexToAddress("0x0000000000000000000000000000000000010000")
	addr, err := Derive(ZkSync{}, factory, make([]byte, 32), domain.ZeroSalt, nil)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xbc602edb1f0f168fe3c2f1af9636d464e50739fd"), addr)

	withInput, err := Derive(ZkSync{}, factory, make([]byte, 32), domain.ZeroSalt, []byte{0x01})
	require.NoError(t, err)
	assert.NotEqual(t, addr, withInput)
}

func TestZkSyncDeployCall(t *testing.T) {
	code := make([]byte, 32)
	h, err := ZkSync{}.BytecodeHash(code, nil)
	require.NoError(t, err)

	data, deps, err := ZkSync{}.DeployCall(domain.ZeroSalt, h, code, nil)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, code, deps[0])
	assert.Equal(t, bindings.NewSingletonFactory().PackDeployContract(domain.ZeroSalt, h, []byte{}), data)
	assert.Equal(t, common.FromHex("0x8d416080"), data[:4])
}

func TestExpectedCode(t *testing.T) {
	art := &domain.ContractArtifact{Bytecode: []byte{1}, DeployedBytecode: []byte{2}}
	assert.Equal(t, []byte{2}, EVM{}.ExpectedCode(art))
	assert.Equal(t, []byte{1}, ZkSync{}.ExpectedCode(art))
}

func TestForDialect(t *testing.T) {
	s, err := ForDialect("")
	require.NoError(t, err)
	assert.Equal(t, domain.DialectEVM, s.Dialect())

	s, err = ForDialect(domain.DialectZkSync)
	require.NoError(t, err)
	assert.Equal(t, domain.DialectZkSync, s.Dialect())

	_, err = ForDialect("cairo")
	assert.ErrorIs(t, err, domain.ErrUnsupportedDialect)
}

func TestParseSalt(t *testing.T) {
	s, err := ParseSalt("")
	require.NoError(t, err)
	assert.Equal(t, domain.ZeroSalt, s)

	_, err = ParseSalt("0x1234")
	assert.ErrorIs(t, err, domain.ErrInvalidEncoding)
}
