package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type LaunchPool struct {
	ID               uint   `json:"id"`
	Owner            string `json:"owner"`
	TotalRaiseAmount uint64 `json:"total_raise_amount"`
	Funded           bool   `json:"funded"`
	Claimable        bool   `json:"claimable"`
	Cancelled        bool   `json:"cancelled"`
	PurchasedAmount  uint64 `json:"purchased_amount"`
}

type Buyer struct {
	ID             uint   `json:"id"`
	PoolID         uint   `json:"pool_id"`
	Address        string `json:"address"`
	TotalPurchased uint64 `json:"total_purchased"`
	TotalFee       uint64 `json:"total_fee"`
	TotalAmount    uint64 `json:"total_amount"`
	ClaimedAmount  uint64 `json:"claimed_amount"`
}

func postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(BaseURL+path, "application/json", bytes.NewBuffer(payload))
	require.NoError(t, err)
	return resp
}

// seedBalance credits the in-memory ledger through the local-mode faucet.
func seedBalance(t *testing.T, address, mint string, amount uint64) {
	t.Helper()
	resp := postJSON(t, "/faucet", map[string]interface{}{
		"address": address,
		"mint":    mint,
		"amount":  amount,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "faucet requires the server to run in local mode")
}

func TestLaunchpadFlow(t *testing.T) {
	requireServer(t)

	now := time.Now().Unix()
	var poolID uint

	// Create a pool whose open window is live right now
	t.Run("Create Pool", func(t *testing.T) {
		resp := postJSON(t, "/launchpad/pools", map[string]interface{}{
			"owner":                            "it-owner",
			"purchase_mint":                    "USDC",
			"offered_mint":                     "IDO",
			"offered_rate":                     10,
			"total_raise_amount":               1000000,
			"early_pool_proportion":            2000,
			"open_pool_proportion":             6000,
			"max_purchase_for_kyc_user":        50000,
			"max_purchase_for_non_kyc_user":    10000,
			"early_pool_participation_fee_pct": 500,
			"open_pool_participation_fee_pct":  300,
			"early_pool_open_time":             now - 3600,
			"early_pool_close_time":            now - 1800,
			"open_pool_open_time":              now - 1800,
			"open_pool_close_time":             now + 3600,
			"tge_date":                         now + 7200,
			"tge_percentage":                   1000,
			"vesting_cliff":                    0,
			"vesting_frequency":                100,
			"number_of_vesting":                9,
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var pool LaunchPool
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pool))
		require.NotZero(t, pool.ID)
		poolID = pool.ID
	})

	t.Run("Buy Before Funding Rejected", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("/launchpad/pools/%d/buy-open", poolID), map[string]interface{}{
			"address": "it-buyer",
			"amount":  1000,
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Fund Offer", func(t *testing.T) {
		seedBalance(t, "it-owner", "IDO", 10000000)
		resp := postJSON(t, fmt.Sprintf("/launchpad/pools/%d/fund-offer", poolID), map[string]interface{}{
			"address": "it-owner",
			"amount":  10000000,
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var pool LaunchPool
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pool))
		assert.True(t, pool.Funded)
	})

	t.Run("Open Pool Purchase", func(t *testing.T) {
		seedBalance(t, "it-buyer", "USDC", 100000)
		resp := postJSON(t, fmt.Sprintf("/launchpad/pools/%d/buy-open", poolID), map[string]interface{}{
			"address": "it-buyer",
			"amount":  10000,
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var buyer Buyer
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&buyer))
		// 3% fee, entitlement at rate 10 on the net
		assert.Equal(t, uint64(300), buyer.TotalFee)
		assert.Equal(t, uint64(9700), buyer.TotalPurchased)
		assert.Equal(t, uint64(97000), buyer.TotalAmount)
	})

	t.Run("Purchase Over Cap Rejected", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("/launchpad/pools/%d/buy-open", poolID), map[string]interface{}{
			"address": "it-buyer",
			"amount":  10000,
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Claim Before Claimable Rejected", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("/launchpad/pools/%d/claim-offer", poolID), map[string]interface{}{
			"address": "it-buyer",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Non Owner Cannot Cancel", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("/launchpad/pools/%d/cancel", poolID), map[string]interface{}{
			"address": "it-buyer",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("Buyer Position Readable", func(t *testing.T) {
		resp, err := http.Get(fmt.Sprintf("%s/launchpad/pools/%d/buyers/it-buyer", BaseURL, poolID))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var buyer Buyer
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&buyer))
		assert.Equal(t, uint64(9700), buyer.TotalPurchased)
	})
}

func TestStakingFlow(t *testing.T) {
	requireServer(t)

	var poolID uint

	t.Run("Create Stake Pool", func(t *testing.T) {
		resp := postJSON(t, "/staking/pools", map[string]interface{}{
			"owner":            "it-owner",
			"reward_mint":      "RWD",
			"stake_mint":       "STK",
			"reward_per_block": 1,
			"stake_decimals":   6,
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var pool struct {
			ID uint `json:"id"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pool))
		require.NotZero(t, pool.ID)
		poolID = pool.ID
	})

	t.Run("Stake And Unstake", func(t *testing.T) {
		seedBalance(t, "it-staker", "STK", 1000000)
		resp := postJSON(t, fmt.Sprintf("/staking/pools/%d/stake", poolID), map[string]interface{}{
			"address": "it-staker",
			"amount":  500000,
		})
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var staker struct {
			TotalStaked uint64 `json:"total_staked"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&staker))
		assert.Equal(t, uint64(500000), staker.TotalStaked)

		resp2 := postJSON(t, fmt.Sprintf("/staking/pools/%d/unstake", poolID), map[string]interface{}{
			"address": "it-staker",
			"amount":  600000,
		})
		defer resp2.Body.Close()
		assert.Equal(t, http.StatusConflict, resp2.StatusCode)
	})

	t.Run("Claim Before Reward Funded Rejected", func(t *testing.T) {
		resp := postJSON(t, fmt.Sprintf("/staking/pools/%d/claim-reward", poolID), map[string]interface{}{
			"address": "it-staker",
		})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}
