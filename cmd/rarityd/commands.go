// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/rarity-staking/builtin/rarity"
	"github.com/vechain/rarity-staking/thor"
)

func generateKey() (*ecdsa.PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	// round trip through the geth curve so the key works with crypto.Sign
	return crypto.ToECDSA(key.Serialize())
}

func keygenAction(ctx *cli.Context) error {
	key, err := generateKey()
	if err != nil {
		return errors.Wrap(err, "generate key")
	}
	addr := thor.Address(crypto.PubkeyToAddress(key.PublicKey))

	if out := ctx.String(outFlag.Name); out != "" {
		if err := crypto.SaveECDSA(out, key); err != nil {
			return errors.Wrapf(err, "save key [%v]", out)
		}
		fmt.Printf("address: %v\nkey file: %v\n", addr, out)
		return nil
	}
	fmt.Printf("address: %v\nprivate key: %v\n", addr, hexutil.Encode(crypto.FromECDSA(key)))
	return nil
}

// parseScores reads "tokenId,score" lines. Blank lines and lines starting with # are skipped.
func parseScores(r io.Reader) ([]*rarity.Record, error) {
	var records []*rarity.Record
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return nil, errors.Errorf("line %d: want tokenId,score", n)
		}
		id, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d: tokenId", n)
		}
		score, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d: score", n)
		}
		records = append(records, &rarity.Record{TokenID: thor.TokenID(id), Score: score})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// signBatch signs every record and writes the POST /rarity body to w.
func signBatch(w io.Writer, records []*rarity.Record, key *ecdsa.PrivateKey) error {
	for _, r := range records {
		if err := rarity.Sign(r, key); err != nil {
			return errors.WithMessagef(err, "sign token %v", r.TokenID)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"records": records})
}

func signAction(ctx *cli.Context) error {
	keyFile := ctx.String(keyFileFlag.Name)
	if keyFile == "" {
		return errors.Errorf("missing -%s", keyFileFlag.Name)
	}
	key, err := crypto.LoadECDSA(keyFile)
	if err != nil {
		return errors.WithMessagef(err, "load key [%v]", keyFile)
	}

	var in io.Reader = os.Stdin
	if path := ctx.String(inputFlag.Name); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	records, err := parseScores(in)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.New("no scores to sign")
	}
	return signBatch(os.Stdout, records, key)
}
