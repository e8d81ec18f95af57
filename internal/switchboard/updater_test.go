package switchboard

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func updateServer(t *testing.T, respond updateResponse) (*Updater, *http.Request) {
	t.Helper()
	var captured http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		require.NoError(t, json.NewEncoder(w).Encode(respond))
	}))
	t.Cleanup(server.Close)

	return NewUpdater(UpdaterConfig{CrossbarURL: server.URL, Network: "devnet"}), &captured
}

func TestFetchUpdateInstruction(t *testing.T) {
	oracle := solana.NewWallet().PublicKey()
	lut := solana.NewWallet().PublicKey()
	feed := solana.NewWallet().PublicKey()
	signer := solana.NewWallet().PublicKey()

	updater, captured := updateServer(t, updateResponse{
		Success: true,
		PullIx: []instructionJSON{{
			ProgramID: ProgramID.String(),
			Data:      base64.StdEncoding.EncodeToString([]byte{9, 8, 7}),
			Keys: []accountMetaJSON{
				{Pubkey: oracle.String(), IsWritable: true},
				{Pubkey: signer.String(), IsSigner: true},
			},
		}},
		LookupTables: []string{lut.String()},
	})

	ix, luts, err := updater.FetchUpdateInstruction(context.Background(), feed, signer)
	require.NoError(t, err)

	assert.Contains(t, captured.URL.Path, "/updates/solana/devnet/"+feed.String())
	assert.Equal(t, signer.String(), captured.URL.Query().Get("payer"))

	assert.Equal(t, ProgramID, ix.ProgramID())
	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7}, data)

	accounts := ix.Accounts()
	require.Len(t, accounts, 2)
	assert.True(t, accounts[0].IsWritable)
	assert.False(t, accounts[0].IsSigner)
	assert.True(t, accounts[1].IsSigner)

	assert.Equal(t, []solana.PublicKey{lut}, luts)
}

func TestFetchUpdateInstructionGatewayError(t *testing.T) {
	updater, _ := updateServer(t, updateResponse{Success: false, Error: "feed not found"})

	_, _, err := updater.FetchUpdateInstruction(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrService)
	assert.Contains(t, err.Error(), "feed not found")
}

func TestFetchUpdateInstructionEmptyResponse(t *testing.T) {
	updater, _ := updateServer(t, updateResponse{Success: true})

	_, _, err := updater.FetchUpdateInstruction(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrService)
}

func TestFetchUpdateInstructionStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	updater := NewUpdater(UpdaterConfig{CrossbarURL: server.URL})
	_, _, err := updater.FetchUpdateInstruction(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrService)
}

func TestDecodeInstructionBadKey(t *testing.T) {
	_, err := decodeInstruction(instructionJSON{
		ProgramID: ProgramID.String(),
		Data:      "",
		Keys:      []accountMetaJSON{{Pubkey: "not-a-key"}},
	})
	assert.ErrorIs(t, err, ErrService)
}
