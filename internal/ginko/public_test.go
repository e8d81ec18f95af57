package ginko

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLoader serves canned accounts and counts reads, so tests can assert
// exactly how much chain traffic a build produces.
type stubLoader struct {
	accounts map[solana.PublicKey][]byte
	calls    int
}

func (s *stubLoader) GetAccountInfo(_ context.Context, key solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	s.calls++
	data, ok := s.accounts[key]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{Value: &rpc.Account{Data: wireAccountData(data)}}, nil
}

func (s *stubLoader) put(key solana.PublicKey, data []byte) {
	if s.accounts == nil {
		s.accounts = make(map[solana.PublicKey][]byte)
	}
	s.accounts[key] = data
}

// wireAccountData builds the rpc payload type through its JSON wire form.
func wireAccountData(raw []byte) *rpc.DataBytesOrJSON {
	encoded, err := json.Marshal([]string{base64.StdEncoding.EncodeToString(raw), "base64"})
	if err != nil {
		panic(err)
	}
	var data rpc.DataBytesOrJSON
	if err := json.Unmarshal(encoded, &data); err != nil {
		panic(err)
	}
	return &data
}

func testAssetFixture(t *testing.T) (AssetRef, []byte) {
	t.Helper()
	nonce := testNonce(t, "BBG000B9XRY4")
	asset := MustDeriveAssetPDA(ProgramID, nonce)
	mint := MustDeriveAssetMintPDA(ProgramID, nonce)
	data := encodeAccount(t, assetAccountDiscriminator, assetState{
		Nonce: nonce,
		Mint:  mint,
	})
	return AssetRef{PublicKey: asset, Mint: mint}, data
}

func marketBuyParams(t *testing.T) PlaceOrderParams {
	t.Helper()
	ref, _ := testAssetFixture(t)
	return PlaceOrderParams{
		Owner:       solana.NewWallet().PublicKey(),
		Asset:       ref,
		Direction:   DirectionBuy,
		Type:        TypeMarket,
		InputQty:    1_000_000,
		PriceOracle: solana.NewWallet().PublicKey(),
		TradeMint:   WrappedSolMint,
		SlippageBps: 50,
	}
}

func TestPlaceOrderValidatesBeforeAnyRead(t *testing.T) {
	loader := &stubLoader{}
	builder := NewPublicBuilder(loader, ProgramID)

	cases := map[string]func(*PlaceOrderParams){
		"trade mint equals asset mint": func(p *PlaceOrderParams) { p.TradeMint = p.Asset.Mint },
		"limit without price":          func(p *PlaceOrderParams) { p.Type = TypeLimit; p.SlippageBps = 0 },
		"limit with slippage": func(p *PlaceOrderParams) {
			p.Type = TypeLimit
			p.LimitPrice = &Price{Mantissa: 1, Scale: 6}
		},
		"market with price": func(p *PlaceOrderParams) {
			p.LimitPrice = &Price{Mantissa: 1, Scale: 6}
		},
		"market without slippage": func(p *PlaceOrderParams) { p.SlippageBps = 0 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			params := marketBuyParams(t)
			mutate(&params)

			_, err := builder.PlaceOrder(context.Background(), params)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, loader.calls, "validation failures must not touch the chain")
		})
	}
}

func TestPlaceOrderBuyExistingAsset(t *testing.T) {
	ref, assetData := testAssetFixture(t)
	loader := &stubLoader{}
	loader.put(ref.PublicKey, assetData)
	builder := NewPublicBuilder(loader, ProgramID)

	params := marketBuyParams(t)
	placed, err := builder.PlaceOrder(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 1, loader.calls, "buy needs only the asset existence probe")
	require.Len(t, placed.Instructions, 1)

	ix := placed.Instructions[0]
	assert.Equal(t, ProgramID, ix.ProgramID())

	accounts := ix.Accounts()
	require.Len(t, accounts, 12)
	assert.Equal(t, params.Owner, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.True(t, accounts[0].IsWritable)
	assert.Equal(t, placed.OrderAddress, accounts[1].PublicKey)
	assert.Equal(t, ref.PublicKey, accounts[2].PublicKey)
	assert.Equal(t, params.TradeMint, accounts[3].PublicKey, "buys escrow the trade mint")
	assert.Equal(t, params.PriceOracle, accounts[6].PublicKey)
	assert.Equal(t, ref.Mint, accounts[11].PublicKey, "existing asset resolves the output mint")

	data, err := ix.Data()
	require.NoError(t, err)
	disc := instructionDiscriminator("place_order")
	assert.Equal(t, disc[:], data[:8])
}

func TestPlaceOrderBuyMissingAssetUsesPlaceholder(t *testing.T) {
	loader := &stubLoader{}
	builder := NewPublicBuilder(loader, ProgramID)

	placed, err := builder.PlaceOrder(context.Background(), marketBuyParams(t))
	require.NoError(t, err)

	accounts := placed.Instructions[0].Accounts()
	assert.Equal(t, ProgramID, accounts[11].PublicKey, "absent optional account encodes as the program id")
}

func TestPlaceOrderFreshNoncePerCall(t *testing.T) {
	loader := &stubLoader{}
	builder := NewPublicBuilder(loader, ProgramID)
	params := marketBuyParams(t)

	first, err := builder.PlaceOrder(context.Background(), params)
	require.NoError(t, err)
	second, err := builder.PlaceOrder(context.Background(), params)
	require.NoError(t, err)

	assert.NotEqual(t, first.OrderNonce, second.OrderNonce)
	assert.NotEqual(t, first.OrderAddress, second.OrderAddress)
}

func TestPlaceOrderSellCreatesReceiverWhenMissing(t *testing.T) {
	ref, _ := testAssetFixture(t)
	loader := &stubLoader{}
	builder := NewPublicBuilder(loader, ProgramID)

	params := marketBuyParams(t)
	params.Asset = ref
	params.Direction = DirectionSell

	placed, err := builder.PlaceOrder(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, placed.Instructions, 2, "missing receiver prepends a create instruction")
	assert.Equal(t, solana.SPLAssociatedTokenAccountProgramID, placed.Instructions[0].ProgramID())

	accounts := placed.Instructions[1].Accounts()
	assert.Equal(t, ref.Mint, accounts[3].PublicKey, "sells escrow the asset mint")
	assert.Equal(t, params.TradeMint, accounts[11].PublicKey, "sells deliver the trade mint")
}

func TestPlaceOrderSellSkipsCreateWhenReceiverExists(t *testing.T) {
	ref, _ := testAssetFixture(t)
	params := marketBuyParams(t)
	params.Asset = ref
	params.Direction = DirectionSell

	receiver := mustAssociatedTokenAddress(params.Owner, params.TradeMint, solana.TokenProgramID)
	loader := &stubLoader{}
	loader.put(receiver, []byte{1})
	builder := NewPublicBuilder(loader, ProgramID)

	placed, err := builder.PlaceOrder(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 1, loader.calls)
	assert.Len(t, placed.Instructions, 1)
}

func cancelOrderFixture(t *testing.T, direction OrderDirection) (*Order, AssetRef, []byte) {
	t.Helper()
	ref, assetData := testAssetFixture(t)
	return &Order{
		PublicKey:   solana.NewWallet().PublicKey(),
		Owner:       solana.NewWallet().PublicKey(),
		Asset:       ref.PublicKey,
		PaymentMint: WrappedSolMint,
		Direction:   direction,
		Type:        TypeMarket,
	}, ref, assetData
}

func TestCancelOrderBuy(t *testing.T) {
	order, _, _ := cancelOrderFixture(t, DirectionBuy)
	refund := mustAssociatedTokenAddress(order.Owner, order.PaymentMint, solana.TokenProgramID)

	loader := &stubLoader{}
	loader.put(refund, []byte{1})
	builder := NewPublicBuilder(loader, ProgramID)

	instructions, err := builder.CancelOrder(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, 1, loader.calls, "buy cancels only check the refund receiver")
	require.Len(t, instructions, 1)

	accounts := instructions[0].Accounts()
	require.Len(t, accounts, 5)
	assert.Equal(t, order.Owner, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.False(t, accounts[0].IsWritable)
	assert.Equal(t, order.PublicKey, accounts[1].PublicKey)
	assert.Equal(t, refund, accounts[3].PublicKey)

	data, err := instructions[0].Data()
	require.NoError(t, err)
	disc := instructionDiscriminator("cancel_order")
	assert.Equal(t, disc[:], data)
}

func TestCancelOrderSellFetchesAssetMint(t *testing.T) {
	order, ref, assetData := cancelOrderFixture(t, DirectionSell)
	refund := mustAssociatedTokenAddress(order.Owner, ref.Mint, solana.TokenProgramID)

	loader := &stubLoader{}
	loader.put(order.Asset, assetData)
	loader.put(refund, []byte{1})
	builder := NewPublicBuilder(loader, ProgramID)

	instructions, err := builder.CancelOrder(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, 2, loader.calls, "sell cancels add exactly one asset read")
	require.Len(t, instructions, 1)
	assert.Equal(t, refund, instructions[0].Accounts()[3].PublicKey, "refund goes out in the asset mint")
}

func TestCancelOrderSellMissingAsset(t *testing.T) {
	order, _, _ := cancelOrderFixture(t, DirectionSell)

	builder := NewPublicBuilder(&stubLoader{}, ProgramID)
	_, err := builder.CancelOrder(context.Background(), order)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelOrderNil(t *testing.T) {
	builder := NewPublicBuilder(&stubLoader{}, ProgramID)
	_, err := builder.CancelOrder(context.Background(), nil)
	assert.ErrorIs(t, err, ErrValidation)
}
