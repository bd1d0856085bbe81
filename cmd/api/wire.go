//go:build wireinject

package main

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/NFT-Forge-sol/nft-forge/x/machine"
	"github.com/NFT-Forge-sol/nft-forge/x/socket"
	"github.com/NFT-Forge-sol/nft-forge/x/util"
)

var machineHandlerProvider = wire.NewSet(machine.NewHandler, machine.NewService, machine.NewRepository)

func SetupMachineService(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, config util.Config) machine.Service {
	wire.Build(machine.NewService, machine.NewRepository)
	return nil
}

func SetupMachineHandler(db *gorm.DB, rdb *redis.Client, mc *memcache.Client, config util.Config) machine.Handler {
	wire.Build(machineHandlerProvider)
	return nil
}

func SetupSocketHandler(service socket.Service, db *gorm.DB, rdb *redis.Client, mc *memcache.Client, config util.Config) socket.Handler {
	wire.Build(socket.NewHandler, socket.NewRouter, machine.NewService, machine.NewRepository)
	return nil
}

func SetupSocketSubscriber(rdb *redis.Client, service socket.Service, config util.Config) socket.Subscriber {
	wire.Build(socket.NewSubscriber)
	return nil
}
